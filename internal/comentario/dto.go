package comentario

import "time"

type ComentarioDTO struct {
	ID         uint      `json:"id"`
	FeedbackID uint      `json:"feedbackId"`
	Conteudo   string    `json:"conteudo"`
	UsuarioID  uint      `json:"usuarioId"`
	Nome       string    `json:"nome"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReacaoDTO struct {
	ID        uint      `json:"id"`
	Tipo      string    `json:"tipo"`
	UsuarioID uint      `json:"usuarioId"`
	Nome      string    `json:"nome"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReacoesResponse junta as reações cruas com a contagem derivada por tipo.
type ReacoesResponse struct {
	Reacoes   []ReacaoDTO      `json:"reacoes"`
	Contagens map[string]int64 `json:"contagens"`
}

func toComentarioDTO(c Comentario) ComentarioDTO {
	out := ComentarioDTO{
		ID:         c.ID,
		FeedbackID: c.FeedbackID,
		Conteudo:   c.Conteudo,
		UsuarioID:  c.UsuarioID,
		CreatedAt:  c.CreatedAt,
	}
	if c.Usuario != nil {
		out.Nome = c.Usuario.Nome
		out.Email = c.Usuario.Email
	}
	return out
}

func toComentarioDTOs(list []Comentario) []ComentarioDTO {
	out := make([]ComentarioDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toComentarioDTO(c))
	}
	return out
}

func toReacaoDTOs(list []Reacao) []ReacaoDTO {
	out := make([]ReacaoDTO, 0, len(list))
	for _, r := range list {
		dto := ReacaoDTO{
			ID:        r.ID,
			Tipo:      r.Tipo,
			UsuarioID: r.UsuarioID,
			CreatedAt: r.CreatedAt,
		}
		if r.Usuario != nil {
			dto.Nome = r.Usuario.Nome
		}
		out = append(out, dto)
	}
	return out
}
