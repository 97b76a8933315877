package comentario

import (
	"time"

	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/usuario"
)

// Tipos de reação que um usuário pode dar a um feedback.
const (
	ReacaoEntendi     = "ENTENDI"
	ReacaoObrigado    = "OBRIGADO"
	ReacaoVouMelhorar = "VOU_MELHORAR"
)

// TiposDeReacao na ordem de exibição; a contagem sempre traz os três.
var TiposDeReacao = []string{ReacaoEntendi, ReacaoObrigado, ReacaoVouMelhorar}

func ReacaoValida(t string) bool {
	return t == ReacaoEntendi || t == ReacaoObrigado || t == ReacaoVouMelhorar
}

type Comentario struct {
	gorm.Model
	Conteudo   string `json:"conteudo"`
	FeedbackID uint   `json:"feedbackId" gorm:"index"`
	UsuarioID  uint   `json:"usuarioId" gorm:"index"`

	Usuario *usuario.Usuario `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
}

// Reacao é única por (feedback, usuário, tipo); repetir o mesmo tipo
// remove a reação existente em vez de duplicar.
type Reacao struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Tipo       string `json:"tipo" gorm:"uniqueIndex:idx_reacao_unica"`
	FeedbackID uint   `json:"feedbackId" gorm:"index;uniqueIndex:idx_reacao_unica"`
	UsuarioID  uint   `json:"usuarioId" gorm:"uniqueIndex:idx_reacao_unica"`

	Usuario *usuario.Usuario `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
}
