package quesito

import "gorm.io/gorm"

// Quesito é um critério de avaliação anexável a um feedback. A remoção
// preferencial é a desativação, para que entradas históricas continuem
// resolvendo o título.
type Quesito struct {
	gorm.Model
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Ordem     int    `json:"ordem" gorm:"default:0;index"`
	Ativo     bool   `json:"ativo" gorm:"default:true;index"`
	UsuarioID uint   `json:"usuarioId"`
}
