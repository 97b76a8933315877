package padronizacao

import (
	"time"

	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/usuario"
)

// Padronizacao é um verbete do glossário de termos da casa.
type Padronizacao struct {
	gorm.Model
	Termo     string `json:"termo" gorm:"unique"`
	Definicao string `json:"definicao"`
	UsuarioID uint   `json:"usuarioId"`

	Autor *usuario.Usuario `gorm:"foreignKey:UsuarioID" json:"autor,omitempty"`
}

// PadronizacaoLeitura marca que o usuário viu o verbete; uma linha por
// par (verbete, usuário), renovada via upsert.
type PadronizacaoLeitura struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PadronizacaoID uint      `json:"padronizacaoId" gorm:"uniqueIndex:idx_padronizacao_leitura"`
	UsuarioID      uint      `json:"usuarioId" gorm:"uniqueIndex:idx_padronizacao_leitura"`
	LidoEm         time.Time `json:"lidoEm"`
}
