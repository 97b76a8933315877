package usuario

import "gorm.io/gorm"

// Papéis do fluxo de feedback. Cada usuário tem exatamente um.
const (
	PapelMaster     = "MASTER"
	PapelDiretor    = "DIRETOR"
	PapelRevisor    = "REVISOR"
	PapelTaquigrafo = "TAQUIGRAFO"
)

func PapelValido(p string) bool {
	switch p {
	case PapelMaster, PapelDiretor, PapelRevisor, PapelTaquigrafo:
		return true
	}
	return false
}

type Usuario struct {
	gorm.Model
	Nome  string `json:"nome"`
	Email string `json:"email" gorm:"unique"`
	Senha string `json:"-"`
	Papel string `json:"papel" gorm:"default:TAQUIGRAFO;index"`
}
