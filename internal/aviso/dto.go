package aviso

import "time"

// AvisoComLeituraDTO anota o aviso com o estado de leitura do usuário.
type AvisoComLeituraDTO struct {
	ID            uint      `json:"id"`
	Titulo        string    `json:"titulo"`
	Conteudo      string    `json:"conteudo"`
	Tipo          string    `json:"tipo"`
	Destinatarios []string  `json:"destinatarios"`
	PublicarEm    time.Time `json:"publicarEm"`
	CreatedAt     time.Time `json:"createdAt"`
	UsuarioID     uint      `json:"usuarioId"`
	AutorNome     string    `json:"autorNome"`
	Lido          bool      `json:"lido"`
}

// AvisoComEstatisticasDTO junta o aviso à telemetria de visualização.
type AvisoComEstatisticasDTO struct {
	AvisoComLeituraDTO
	EstatisticasVisualizacao
}

func toLeituraDTO(a Aviso, lido bool) AvisoComLeituraDTO {
	dto := AvisoComLeituraDTO{
		ID:            a.ID,
		Titulo:        a.Titulo,
		Conteudo:      a.Conteudo,
		Tipo:          a.Tipo,
		Destinatarios: a.Destinatarios,
		PublicarEm:    a.PublicarEm,
		CreatedAt:     a.CreatedAt,
		UsuarioID:     a.UsuarioID,
		Lido:          lido,
	}
	if a.Autor != nil {
		dto.AutorNome = a.Autor.Nome
	}
	return dto
}
