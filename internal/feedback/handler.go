package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/erros"
	"github.com/legistaq/api-feedback/internal/quesito"
	"github.com/legistaq/api-feedback/internal/usuario"
)

// Handler encapsula o DB e os repositórios usados pelo agregado
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Usuarios   usuario.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Usuarios:   usuario.NewRepository(),
	}
}

type EntradaQuesitoRequest struct {
	QuesitoID     uint   `json:"quesitoId"`
	TextoOriginal string `json:"textoOriginal"`
	TextoRevisado string `json:"textoRevisado"`
	Ordem         int    `json:"ordem"`
}

type CriarFeedbackRequest struct {
	Tipo         string                  `json:"tipo"`
	Titulo       string                  `json:"titulo"`
	Conteudo     string                  `json:"conteudo"`
	ImagemURL    string                  `json:"imagemUrl"`
	Nota         *float64                `json:"nota"`
	TipoSessao   string                  `json:"tipoSessao"`
	NumeroSessao string                  `json:"numeroSessao"`
	Categorias   []string                `json:"categorias"`
	TaquigrafoID uint                    `json:"taquigrafoId"`
	Quesitos     []EntradaQuesitoRequest `json:"quesitos"`
}

// validarEntradas confere textos obrigatórios e se todos os quesitos
// referenciados existem e estão ativos.
func (h *Handler) validarEntradas(entradas []EntradaQuesitoRequest) error {
	ids := make(map[uint]bool, len(entradas))
	for _, e := range entradas {
		if e.TextoOriginal == "" || e.TextoRevisado == "" {
			return erros.Validacao("texto original e texto revisado são obrigatórios em cada quesito")
		}
		ids[e.QuesitoID] = true
	}

	idList := make([]uint, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	var ativos int64
	if err := h.DB.Model(&quesito.Quesito{}).
		Where("id IN ? AND ativo = ?", idList, true).
		Count(&ativos).Error; err != nil {
		return err
	}
	if int(ativos) != len(idList) {
		return erros.Validacao("todos os quesitos referenciados devem existir e estar ativos")
	}
	return nil
}

// montarEntradas ordena pelo valor pedido e grava posições densas a
// partir de zero, qualquer que seja a numeração enviada pelo cliente.
func montarEntradas(req []EntradaQuesitoRequest) []FeedbackQuesito {
	ordenadas := make([]EntradaQuesitoRequest, len(req))
	copy(ordenadas, req)
	sort.SliceStable(ordenadas, func(i, j int) bool {
		return ordenadas[i].Ordem < ordenadas[j].Ordem
	})

	entradas := make([]FeedbackQuesito, 0, len(ordenadas))
	for i, e := range ordenadas {
		entradas = append(entradas, FeedbackQuesito{
			QuesitoID:     e.QuesitoID,
			TextoOriginal: e.TextoOriginal,
			TextoRevisado: e.TextoRevisado,
			Ordem:         i,
		})
	}
	return entradas
}

// CriarFeedback trata POST /feedbacks. Somente revisores criam; o
// destinatário precisa ser um taquígrafo.
func (h *Handler) CriarFeedback(w http.ResponseWriter, r *http.Request) {
	revisorID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}
	if papel != usuario.PapelRevisor {
		erros.Responder(w, erros.NaoAutorizado("apenas revisores criam feedbacks"))
		return
	}

	var req CriarFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if !TipoValido(req.Tipo) {
		erros.Responder(w, erros.Validacao("tipo deve ser CORRETIVO ou POSITIVO"))
		return
	}
	if !TipoSessaoValido(req.TipoSessao) {
		erros.Responder(w, erros.Validacao("tipo de sessão deve ser PLENARIO ou COMISSAO"))
		return
	}
	if req.Nota != nil && (*req.Nota < 0 || *req.Nota > 5) {
		erros.Responder(w, erros.Validacao("nota deve estar entre 0 e 5"))
		return
	}
	if len(req.Quesitos) == 0 && req.Conteudo == "" {
		erros.Responder(w, erros.Validacao("informe ao menos um quesito ou o conteúdo livre"))
		return
	}

	destinatario, err := h.Usuarios.BuscarPorID(h.DB, req.TaquigrafoID)
	if err != nil {
		erros.Responder(w, erros.NaoEncontrado("taquígrafo"))
		return
	}
	if destinatario.Papel != usuario.PapelTaquigrafo {
		erros.Responder(w, erros.Validacao("o destinatário do feedback deve ser um taquígrafo"))
		return
	}

	if len(req.Quesitos) > 0 {
		if err := h.validarEntradas(req.Quesitos); err != nil {
			erros.Responder(w, err)
			return
		}
	}

	f := Feedback{
		Tipo:         req.Tipo,
		Titulo:       req.Titulo,
		Conteudo:     req.Conteudo,
		ImagemURL:    req.ImagemURL,
		Nota:         req.Nota,
		TipoSessao:   req.TipoSessao,
		NumeroSessao: req.NumeroSessao,
		Categorias:   req.Categorias,
		RevisorID:    revisorID,
		TaquigrafoID: req.TaquigrafoID,
	}

	if err := h.Repository.CriarComQuesitos(h.DB, &f, montarEntradas(req.Quesitos)); err != nil {
		http.Error(w, "Erro ao criar feedback", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// BuscarPorIDHTTP trata GET /feedbacks/{id}
func (h *Handler) BuscarPorIDHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	f, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("feedback"))
			return
		}
		http.Error(w, "Erro ao buscar feedback", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(f)
}

func filtrosDaQuery(r *http.Request) (Filtros, error) {
	var filtros Filtros
	q := r.URL.Query()

	filtros.Tipo = q.Get("tipo")
	if filtros.Tipo != "" && !TipoValido(filtros.Tipo) {
		return filtros, erros.Validacao("tipo deve ser CORRETIVO ou POSITIVO")
	}
	if v := q.Get("lido"); v != "" {
		lido, err := strconv.ParseBool(v)
		if err != nil {
			return filtros, erros.Validacao("lido deve ser true ou false")
		}
		filtros.Lido = &lido
	}
	if v := q.Get("inicio"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filtros, erros.Validacao("inicio deve estar em RFC3339")
		}
		filtros.Inicio = &t
	}
	if v := q.Get("fim"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filtros, erros.Validacao("fim deve estar em RFC3339")
		}
		filtros.Fim = &t
	}
	filtros.Busca = q.Get("busca")
	return filtros, nil
}

// ListarFeedbacks trata GET /feedbacks. A visibilidade vem do papel:
// uma única consulta genérica recebe o predicado do chamador.
func (h *Handler) ListarFeedbacks(w http.ResponseWriter, r *http.Request) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	filtros, err := filtrosDaQuery(r)
	if err != nil {
		erros.Responder(w, err)
		return
	}

	feedbacks, err := h.Repository.Listar(h.DB, EscopoParaPapel(papel, usuarioID), filtros)
	if err != nil {
		http.Error(w, "Erro ao listar feedbacks", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(feedbacks)
}

// MarcarComoLidoHTTP trata POST /feedbacks/{id}/lido (idempotente)
func (h *Handler) MarcarComoLidoHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if err := h.Repository.MarcarComoLido(h.DB, uint(id), time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("feedback"))
			return
		}
		http.Error(w, "Erro ao marcar como lido", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Feedback marcado como lido"))
}

type AtualizarFeedbackRequest struct {
	Titulo     *string  `json:"titulo"`
	Conteudo   *string  `json:"conteudo"`
	Nota       *float64 `json:"nota"`
	Categorias []string `json:"categorias"`
}

// carregarParaEdicao busca o feedback e garante que o chamador é o autor
// original e segue revisor.
func (h *Handler) carregarParaEdicao(r *http.Request, id uint) (*Feedback, error) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		return nil, erros.NaoAutorizado("não autenticado")
	}

	f, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, erros.NaoEncontrado("feedback")
		}
		return nil, err
	}
	if f.RevisorID != usuarioID || papel != usuario.PapelRevisor {
		return nil, erros.NaoAutorizado("apenas o revisor autor pode editar o feedback")
	}
	return f, nil
}

// AtualizarFeedback trata PUT /feedbacks/{id}. Apenas título, conteúdo,
// nota e categorias são mutáveis após a criação.
func (h *Handler) AtualizarFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if _, err := h.carregarParaEdicao(r, uint(id)); err != nil {
		erros.Responder(w, err)
		return
	}

	var req AtualizarFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Nota != nil && (*req.Nota < 0 || *req.Nota > 5) {
		erros.Responder(w, erros.Validacao("nota deve estar entre 0 e 5"))
		return
	}

	campos := map[string]interface{}{}
	if req.Titulo != nil {
		campos["titulo"] = *req.Titulo
	}
	if req.Conteudo != nil {
		campos["conteudo"] = *req.Conteudo
	}
	if req.Nota != nil {
		campos["nota"] = *req.Nota
	}
	if req.Categorias != nil {
		serializado, err := json.Marshal(req.Categorias)
		if err != nil {
			http.Error(w, "Erro ao atualizar feedback", http.StatusInternalServerError)
			return
		}
		campos["categorias"] = string(serializado)
	}

	if err := h.Repository.Atualizar(h.DB, uint(id), campos); err != nil {
		http.Error(w, "Erro ao atualizar feedback", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Feedback atualizado com sucesso"))
}

type SubstituirQuesitosRequest struct {
	Quesitos []EntradaQuesitoRequest `json:"quesitos"`
}

// SubstituirQuesitosHTTP trata PUT /feedbacks/{id}/quesitos: troca o
// conjunto inteiro de entradas de uma vez.
func (h *Handler) SubstituirQuesitosHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	if _, err := h.carregarParaEdicao(r, uint(id)); err != nil {
		erros.Responder(w, err)
		return
	}

	var req SubstituirQuesitosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if len(req.Quesitos) > 0 {
		if err := h.validarEntradas(req.Quesitos); err != nil {
			erros.Responder(w, err)
			return
		}
	}

	if err := h.Repository.SubstituirQuesitos(h.DB, uint(id), montarEntradas(req.Quesitos)); err != nil {
		http.Error(w, "Erro ao substituir quesitos", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Quesitos substituídos com sucesso"))
}

// DeletarFeedback trata DELETE /feedbacks/{id}. Permitido a Master,
// Diretor ou ao revisor autor.
func (h *Handler) DeletarFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	f, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("feedback"))
			return
		}
		http.Error(w, "Erro ao buscar feedback", http.StatusInternalServerError)
		return
	}

	elevado := papel == usuario.PapelMaster || papel == usuario.PapelDiretor
	if !elevado && f.RevisorID != usuarioID {
		erros.Responder(w, erros.NaoAutorizado("sem permissão para remover este feedback"))
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		http.Error(w, "Erro ao remover feedback", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ContarHTTP trata GET /feedbacks/contagem: enviados para revisor,
// recebidos para os demais.
func (h *Handler) ContarHTTP(w http.ResponseWriter, r *http.Request) {
	usuarioID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	total, err := h.Repository.ContarPorUsuario(h.DB, usuarioID, papel)
	if err != nil {
		http.Error(w, "Erro ao contar feedbacks", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, `{"total":%d}`, total)
}
