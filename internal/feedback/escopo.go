package feedback

import (
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/usuario"
)

// Escopo restringe uma consulta de feedbacks ao que o usuário pode ver.
// É um gorm scope puro, injetado na listagem genérica; a matriz de acesso
// inteira mora aqui.
type Escopo func(*gorm.DB) *gorm.DB

// EscopoParaPapel devolve o predicado de visibilidade do papel:
// taquígrafo vê o que recebeu, revisor o que enviou, Master e Diretor
// veem tudo.
func EscopoParaPapel(papel string, usuarioID uint) Escopo {
	switch papel {
	case usuario.PapelTaquigrafo:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("taquigrafo_id = ?", usuarioID)
		}
	case usuario.PapelRevisor:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("revisor_id = ?", usuarioID)
		}
	default:
		return func(db *gorm.DB) *gorm.DB {
			return db
		}
	}
}
