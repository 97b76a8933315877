package aviso

import (
	"time"

	"github.com/legistaq/api-feedback/internal/usuario"
)

const (
	TipoCotidiano  = "COTIDIANO"
	TipoUrgente    = "URGENTE"
	TipoRecorrente = "RECORRENTE"

	// DestinatarioTodos é o valor sentinela que torna o aviso visível
	// para qualquer papel.
	DestinatarioTodos = "ALL"
)

func TipoValido(t string) bool {
	return t == TipoCotidiano || t == TipoUrgente || t == TipoRecorrente
}

// Aviso é um comunicado direcionado a um conjunto de papéis.
type Aviso struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Titulo   string `json:"titulo"`
	Conteudo string `json:"conteudo"`
	Tipo     string `json:"tipo" gorm:"default:COTIDIANO;index"`

	// Suporta múltiplos papéis destinatários em JSONB
	Destinatarios []string `gorm:"type:jsonb;serializer:json" json:"destinatarios"`

	PublicarEm time.Time `json:"publicarEm" gorm:"index"`
	Ativo      bool      `json:"ativo" gorm:"default:true"`
	UsuarioID  uint      `json:"usuarioId" gorm:"index"`

	Autor *usuario.Usuario `gorm:"foreignKey:UsuarioID" json:"autor,omitempty"`
}

// VisivelPara aplica o invariante de visibilidade: ativo, já publicado
// e destinado ao papel (lista vazia ou "ALL" alcançam todo mundo).
func (a Aviso) VisivelPara(papel string, agora time.Time) bool {
	if !a.Ativo || a.PublicarEm.After(agora) {
		return false
	}
	if len(a.Destinatarios) == 0 {
		return true
	}
	for _, d := range a.Destinatarios {
		if d == DestinatarioTodos || d == papel {
			return true
		}
	}
	return false
}

// AvisoLeitura é o reconhecimento explícito, no máximo uma linha por
// (aviso, usuário); chamadas repetidas só atualizam o timestamp.
type AvisoLeitura struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AvisoID   uint      `json:"avisoId" gorm:"uniqueIndex:idx_aviso_leitura"`
	UsuarioID uint      `json:"usuarioId" gorm:"uniqueIndex:idx_aviso_leitura"`
	LidoEm    time.Time `json:"lidoEm"`
}

// AvisoVisualizacao é um log puramente de telemetria: o mesmo usuário
// pode registrar quantas visualizações quiser; nunca entra na contagem
// de não lidos.
type AvisoVisualizacao struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AvisoID       uint      `json:"avisoId" gorm:"index"`
	UsuarioID     uint      `json:"usuarioId" gorm:"index"`
	VisualizadoEm time.Time `json:"visualizadoEm" gorm:"index;autoCreateTime"`
}
