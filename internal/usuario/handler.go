package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/erros"
	"github.com/legistaq/api-feedback/internal/utils"
)

// Handler encapsula o DB e o Repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

type CriarUsuarioRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Papel string `json:"papel"`
}

type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type LoginResponse struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"usuario"`
}

// Login trata POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorEmail(h.DB, req.Email)
	if err != nil || !utils.VerificarSenha(u.Senha, req.Senha) {
		http.Error(w, "Credenciais inválidas", http.StatusUnauthorized)
		return
	}

	token, err := auth.GerarToken(u.ID, u.Papel)
	if err != nil {
		http.Error(w, "Erro ao gerar token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token, Usuario: *u})
}

// CriarUsuario trata POST /usuarios (somente MASTER)
func (h *Handler) CriarUsuario(w http.ResponseWriter, r *http.Request) {
	var req CriarUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Nome == "" || req.Email == "" {
		erros.Responder(w, erros.Validacao("nome e email são obrigatórios"))
		return
	}
	if req.Papel == "" {
		req.Papel = PapelTaquigrafo
	}
	if !PapelValido(req.Papel) {
		erros.Responder(w, erros.Validacao("papel desconhecido"))
		return
	}

	senha := req.Senha
	if senha == "" {
		var err error
		senha, err = utils.GerarSenhaTemporaria()
		if err != nil {
			http.Error(w, "Erro ao gerar senha", http.StatusInternalServerError)
			return
		}
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		http.Error(w, "Erro ao processar senha", http.StatusInternalServerError)
		return
	}

	u := Usuario{Nome: req.Nome, Email: req.Email, Senha: hash, Papel: req.Papel}
	if err := h.Repository.Salvar(h.DB, &u); err != nil {
		http.Error(w, "Erro ao criar usuário", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(u)
}

// ListarUsuarios trata GET /usuarios (?papel=REVISOR filtra por papel)
func (h *Handler) ListarUsuarios(w http.ResponseWriter, r *http.Request) {
	papel := r.URL.Query().Get("papel")

	var (
		usuarios []Usuario
		err      error
	)
	if papel != "" {
		if !PapelValido(papel) {
			erros.Responder(w, erros.Validacao("papel desconhecido"))
			return
		}
		usuarios, err = h.Repository.ListarPorPapel(h.DB, papel)
	} else {
		usuarios, err = h.Repository.ListarTodos(h.DB)
	}
	if err != nil {
		http.Error(w, "Erro ao listar usuários", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(usuarios)
}

// BuscarPorID trata GET /usuarios/{id}
func (h *Handler) BuscarPorIDHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(u)
}

type AtualizarUsuarioRequest struct {
	Nome  *string `json:"nome"`
	Email *string `json:"email"`
}

// AtualizarUsuario trata PUT /usuarios/{id}: o próprio usuário ou o
// Master alteram nome e email. Papel tem rota própria.
func (h *Handler) AtualizarUsuario(w http.ResponseWriter, r *http.Request) {
	solicitanteID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok {
		http.Error(w, "Não autenticado", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if uint(id) != solicitanteID && papel != PapelMaster {
		erros.Responder(w, erros.NaoAutorizado("sem permissão para alterar este usuário"))
		return
	}

	var req AtualizarUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Nome != nil && *req.Nome == "" {
		erros.Responder(w, erros.Validacao("nome não pode ficar vazio"))
		return
	}
	if req.Email != nil && *req.Email == "" {
		erros.Responder(w, erros.Validacao("email não pode ficar vazio"))
		return
	}

	campos := map[string]interface{}{}
	if req.Nome != nil {
		campos["nome"] = *req.Nome
	}
	if req.Email != nil {
		campos["email"] = *req.Email
	}

	if err := h.Repository.Atualizar(h.DB, uint(id), campos); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("usuário"))
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			erros.Responder(w, erros.Conflito("email já está em uso"))
			return
		}
		http.Error(w, "Erro ao atualizar usuário", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Usuário atualizado com sucesso"))
}

// AlterarPapel trata PUT /usuarios/{id}/papel (somente MASTER).
// A troca vale já na próxima requisição do usuário afetado, mesmo com
// o token antigo em mãos.
func (h *Handler) AlterarPapel(w http.ResponseWriter, r *http.Request) {
	_, papelSolicitante, ok := auth.UsuarioDoContexto(r)
	if !ok || papelSolicitante != PapelMaster {
		erros.Responder(w, erros.NaoAutorizado("apenas Master pode alterar papéis"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}

	var payload struct {
		Papel string `json:"papel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if !PapelValido(payload.Papel) {
		erros.Responder(w, erros.Validacao("papel desconhecido"))
		return
	}

	if err := h.Repository.AtualizarPapel(h.DB, uint(id), payload.Papel); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erros.Responder(w, erros.NaoEncontrado("usuário"))
			return
		}
		http.Error(w, "Erro ao alterar papel", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Papel atualizado com sucesso"))
}

// DeletarUsuario trata DELETE /usuarios/{id} (somente MASTER)
func (h *Handler) DeletarUsuario(w http.ResponseWriter, r *http.Request) {
	solicitanteID, papel, ok := auth.UsuarioDoContexto(r)
	if !ok || papel != PapelMaster {
		erros.Responder(w, erros.NaoAutorizado("apenas Master pode remover usuários"))
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "ID inválido", http.StatusBadRequest)
		return
	}
	if uint(id) == solicitanteID {
		erros.Responder(w, erros.Validacao("você não pode deletar seu próprio usuário"))
		return
	}

	if err := h.Repository.Deletar(h.DB, uint(id)); err != nil {
		if errors.Is(err, erros.ErrConflito) {
			erros.Responder(w, err)
			return
		}
		http.Error(w, "Erro ao remover usuário", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
