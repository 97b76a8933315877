package feedback

import (
	"time"

	"github.com/legistaq/api-feedback/internal/quesito"
	"github.com/legistaq/api-feedback/internal/usuario"
)

const (
	TipoCorretivo = "CORRETIVO"
	TipoPositivo  = "POSITIVO"

	SessaoPlenario = "PLENARIO"
	SessaoComissao = "COMISSAO"
)

func TipoValido(t string) bool {
	return t == TipoCorretivo || t == TipoPositivo
}

func TipoSessaoValido(t string) bool {
	return t == "" || t == SessaoPlenario || t == SessaoComissao
}

// Feedback é a avaliação estruturada de um revisor para um taquígrafo.
// Revisor e taquígrafo são imutáveis após a criação; a exclusão é física
// e arrasta entradas de quesito, comentários e reações.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tipo         string   `json:"tipo" gorm:"default:CORRETIVO;index"`
	Titulo       string   `json:"titulo"`
	Conteudo     string   `json:"conteudo"`
	ImagemURL    string   `json:"imagemUrl"`
	Nota         *float64 `json:"nota,omitempty"`
	TipoSessao   string   `json:"tipoSessao,omitempty"`
	NumeroSessao string   `json:"numeroSessao,omitempty"`

	// Suporta múltiplas categorias em JSONB
	Categorias []string `gorm:"type:jsonb;serializer:json" json:"categorias"`

	// Lido transita de false para true uma única vez; LidoEm guarda o
	// instante da primeira leitura.
	Lido   bool       `json:"lido" gorm:"default:false;index"`
	LidoEm *time.Time `json:"lidoEm,omitempty"`

	RevisorID    uint `json:"revisorId" gorm:"index"`
	TaquigrafoID uint `json:"taquigrafoId" gorm:"index"`

	Revisor    *usuario.Usuario `gorm:"foreignKey:RevisorID" json:"revisor,omitempty"`
	Taquigrafo *usuario.Usuario `gorm:"foreignKey:TaquigrafoID" json:"taquigrafo,omitempty"`

	Quesitos []FeedbackQuesito `gorm:"foreignKey:FeedbackID" json:"quesitos"`
}

// FeedbackQuesito liga um feedback a um quesito do catálogo, carregando
// o par de textos original/revisado. O conjunto é sempre substituído por
// inteiro; nunca há edição parcial de entradas.
type FeedbackQuesito struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FeedbackID    uint   `json:"feedbackId" gorm:"index"`
	QuesitoID     uint   `json:"quesitoId" gorm:"index"`
	TextoOriginal string `json:"textoOriginal"`
	TextoRevisado string `json:"textoRevisado"`
	Ordem         int    `json:"ordem"`

	Quesito *quesito.Quesito `gorm:"foreignKey:QuesitoID" json:"quesito,omitempty"`
}
