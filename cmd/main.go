package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/legistaq/api-feedback/internal/auth"
	"github.com/legistaq/api-feedback/internal/aviso"
	"github.com/legistaq/api-feedback/internal/comentario"
	"github.com/legistaq/api-feedback/internal/estatisticas"
	"github.com/legistaq/api-feedback/internal/feedback"
	"github.com/legistaq/api-feedback/internal/padronizacao"
	"github.com/legistaq/api-feedback/internal/quesito"
	"github.com/legistaq/api-feedback/internal/usuario"
	"github.com/legistaq/api-feedback/internal/utils/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis do ambiente")
	}

	conexao, err := db.Conectar()
	if err != nil {
		log.Fatal("Erro ao conectar no banco:", err)
	}

	// AutoMigrate para todos os modelos
	if err := conexao.AutoMigrate(
		&usuario.Usuario{},
		&quesito.Quesito{},
		&feedback.Feedback{},
		&feedback.FeedbackQuesito{},
		&comentario.Comentario{},
		&comentario.Reacao{},
		&aviso.Aviso{},
		&aviso.AvisoLeitura{},
		&aviso.AvisoVisualizacao{},
		&padronizacao.Padronizacao{},
		&padronizacao.PadronizacaoLeitura{},
	); err != nil {
		log.Fatal("Erro no AutoMigrate:", err)
	}

	// Handlers
	usuarioHandler := usuario.NewHandler(conexao)
	quesitoHandler := quesito.NewHandler(conexao)
	feedbackHandler := feedback.NewHandler(conexao)
	comentarioHandler := comentario.NewHandler(conexao)
	avisoHandler := aviso.NewHandler(conexao)
	padronizacaoHandler := padronizacao.NewHandler(conexao)
	estatisticasHandler := estatisticas.NewHandler(conexao)

	// Router
	r := mux.NewRouter()

	// Rota pública
	r.HandleFunc("/login", usuarioHandler.Login).Methods("POST")

	// Tudo abaixo exige autenticação; o papel é lido do banco a cada
	// requisição, então trocas de papel valem sem novo login.
	usuarioRepo := usuario.NewRepository()
	api := r.PathPrefix("/").Subrouter()
	api.Use(auth.MiddlewareAutenticacao(func(id uint) (string, error) {
		u, err := usuarioRepo.BuscarPorID(conexao, id)
		if err != nil {
			return "", err
		}
		return u.Papel, nil
	}))

	// Rotas de usuários
	api.Handle("/usuarios",
		auth.RequirePapel(usuario.PapelMaster)(http.HandlerFunc(usuarioHandler.CriarUsuario))).Methods("POST")
	api.HandleFunc("/usuarios", usuarioHandler.ListarUsuarios).Methods("GET")
	api.HandleFunc("/usuarios/{id}", usuarioHandler.BuscarPorIDHTTP).Methods("GET")
	api.HandleFunc("/usuarios/{id}", usuarioHandler.AtualizarUsuario).Methods("PUT")
	api.HandleFunc("/usuarios/{id}/papel", usuarioHandler.AlterarPapel).Methods("PUT")
	api.HandleFunc("/usuarios/{id}", usuarioHandler.DeletarUsuario).Methods("DELETE")

	// Rotas de quesitos
	api.HandleFunc("/quesitos", quesitoHandler.CriarQuesito).Methods("POST")
	api.HandleFunc("/quesitos", quesitoHandler.ListarQuesitos).Methods("GET")
	api.HandleFunc("/quesitos/contagem", quesitoHandler.ContarHTTP).Methods("GET")
	api.HandleFunc("/quesitos/ordem", quesitoHandler.ReordenarHTTP).Methods("PUT")
	api.HandleFunc("/quesitos/{id}", quesitoHandler.BuscarPorIDHTTP).Methods("GET")
	api.HandleFunc("/quesitos/{id}", quesitoHandler.AtualizarQuesito).Methods("PUT")
	api.HandleFunc("/quesitos/{id}", quesitoHandler.DeletarQuesito).Methods("DELETE")

	// Rotas de feedbacks
	api.HandleFunc("/feedbacks", feedbackHandler.CriarFeedback).Methods("POST")
	api.HandleFunc("/feedbacks", feedbackHandler.ListarFeedbacks).Methods("GET")
	api.HandleFunc("/feedbacks/contagem", feedbackHandler.ContarHTTP).Methods("GET")
	api.HandleFunc("/feedbacks/{id}", feedbackHandler.BuscarPorIDHTTP).Methods("GET")
	api.HandleFunc("/feedbacks/{id}", feedbackHandler.AtualizarFeedback).Methods("PUT")
	api.HandleFunc("/feedbacks/{id}", feedbackHandler.DeletarFeedback).Methods("DELETE")
	api.HandleFunc("/feedbacks/{id}/lido", feedbackHandler.MarcarComoLidoHTTP).Methods("POST")
	api.HandleFunc("/feedbacks/{id}/quesitos", feedbackHandler.SubstituirQuesitosHTTP).Methods("PUT")

	// Rotas de comentários e reações
	api.HandleFunc("/feedbacks/{id}/comentarios", comentarioHandler.CriarComentario).Methods("POST")
	api.HandleFunc("/feedbacks/{id}/comentarios", comentarioHandler.ListarPorFeedbackHTTP).Methods("GET")
	api.HandleFunc("/comentarios/{id}", comentarioHandler.RemoverComentario).Methods("DELETE")
	api.HandleFunc("/feedbacks/{id}/reacoes", comentarioHandler.AlternarReacao).Methods("POST")
	api.HandleFunc("/feedbacks/{id}/reacoes", comentarioHandler.ListarReacoesHTTP).Methods("GET")

	// Rotas de avisos
	api.HandleFunc("/avisos", avisoHandler.CriarAviso).Methods("POST")
	api.HandleFunc("/avisos", avisoHandler.ListarAvisos).Methods("GET")
	api.HandleFunc("/avisos/nao-lidos", avisoHandler.ContarNaoLidosHTTP).Methods("GET")
	api.HandleFunc("/avisos/estatisticas", avisoHandler.ListarComEstatisticasHTTP).Methods("GET")
	api.HandleFunc("/avisos/{id}", avisoHandler.BuscarPorIDHTTP).Methods("GET")
	api.HandleFunc("/avisos/{id}", avisoHandler.AtualizarAviso).Methods("PUT")
	api.HandleFunc("/avisos/{id}", avisoHandler.DeletarAviso).Methods("DELETE")
	api.HandleFunc("/avisos/{id}/lido", avisoHandler.MarcarComoLidoHTTP).Methods("POST")
	api.HandleFunc("/avisos/{id}/visualizacao", avisoHandler.RegistrarVisualizacaoHTTP).Methods("POST")
	api.HandleFunc("/avisos/{id}/estatisticas", avisoHandler.EstatisticasHTTP).Methods("GET")

	// Rotas de padronização
	api.HandleFunc("/padronizacao", padronizacaoHandler.CriarPadronizacao).Methods("POST")
	api.HandleFunc("/padronizacao", padronizacaoHandler.ListarPadronizacao).Methods("GET")
	api.HandleFunc("/padronizacao/contagem", padronizacaoHandler.ContarHTTP).Methods("GET")
	api.HandleFunc("/padronizacao/nao-lidos", padronizacaoHandler.ContarNaoLidosHTTP).Methods("GET")
	api.HandleFunc("/padronizacao/lidos", padronizacaoHandler.MarcarTodosComoLidosHTTP).Methods("POST")
	api.HandleFunc("/padronizacao/{id}", padronizacaoHandler.BuscarPorIDHTTP).Methods("GET")
	api.HandleFunc("/padronizacao/{id}", padronizacaoHandler.AtualizarPadronizacao).Methods("PUT")
	api.HandleFunc("/padronizacao/{id}", padronizacaoHandler.DeletarPadronizacao).Methods("DELETE")
	api.HandleFunc("/padronizacao/{id}/lido", padronizacaoHandler.MarcarComoLidoHTTP).Methods("POST")

	// Rotas de estatísticas
	api.HandleFunc("/estatisticas", estatisticasHandler.GeraisHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/feedbacks", estatisticasHandler.FeedbacksHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/reacoes", estatisticasHandler.ReacoesHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/indice-medio", estatisticasHandler.IndiceMedioHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/top-taquigrafos", estatisticasHandler.TopTaquigrafosHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/top-revisores", estatisticasHandler.TopRevisoresHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/quesitos", estatisticasHandler.UsoQuesitosHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/minhas", estatisticasHandler.MinhasHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/revisores/{id}", estatisticasHandler.PorRevisorHTTP).Methods("GET")
	api.HandleFunc("/estatisticas/taquigrafos/{id}", estatisticasHandler.PorTaquigrafoHTTP).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}

	fmt.Println("Servidor rodando em http://localhost:" + porta)
	log.Fatal(http.ListenAndServe(":"+porta, c.Handler(r)))
}
