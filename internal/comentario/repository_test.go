package comentario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/legistaq/api-feedback/internal/usuario"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&usuario.Usuario{}, &Comentario{}, &Reacao{}))
	return db
}

func criarUsuario(t *testing.T, db *gorm.DB, nome string) usuario.Usuario {
	u := usuario.Usuario{Nome: nome, Email: nome + "@camara.test", Senha: "hash", Papel: usuario.PapelTaquigrafo}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestAlternarReacaoParidade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")

	acao, err := repo.AlternarReacao(db, 1, u.ID, ReacaoEntendi)
	require.NoError(t, err)
	assert.Equal(t, AcaoAdicionada, acao)

	acao, err = repo.AlternarReacao(db, 1, u.ID, ReacaoEntendi)
	require.NoError(t, err)
	assert.Equal(t, AcaoRemovida, acao)

	var total int64
	require.NoError(t, db.Model(&Reacao{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestReacoesDeTiposDiferentesSaoIndependentes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")

	_, err := repo.AlternarReacao(db, 1, u.ID, ReacaoEntendi)
	require.NoError(t, err)
	_, err = repo.AlternarReacao(db, 1, u.ID, ReacaoObrigado)
	require.NoError(t, err)

	contagens, err := repo.ContarReacoes(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), contagens[ReacaoEntendi])
	assert.Equal(t, int64(1), contagens[ReacaoObrigado])
	assert.Equal(t, int64(0), contagens[ReacaoVouMelhorar])

	// remover um tipo não toca no outro
	_, err = repo.AlternarReacao(db, 1, u.ID, ReacaoEntendi)
	require.NoError(t, err)

	contagens, err = repo.ContarReacoes(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), contagens[ReacaoEntendi])
	assert.Equal(t, int64(1), contagens[ReacaoObrigado])
}

func TestContarReacoesSempreDevolveOsTresTipos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	contagens, err := repo.ContarReacoes(db, 42)
	require.NoError(t, err)
	require.Len(t, contagens, len(TiposDeReacao))
	for _, tipo := range TiposDeReacao {
		assert.Equal(t, int64(0), contagens[tipo])
	}
}

func TestDeletarExigeAutoria(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	autora := criarUsuario(t, db, "ana")
	outra := criarUsuario(t, db, "bia")

	c := Comentario{Conteudo: "entendi o ponto", FeedbackID: 1, UsuarioID: autora.ID}
	require.NoError(t, repo.Criar(db, &c))

	linhas, err := repo.Deletar(db, c.ID, outra.ID)
	require.NoError(t, err)
	assert.Zero(t, linhas)

	existe, err := repo.Existe(db, c.ID)
	require.NoError(t, err)
	assert.True(t, existe)

	linhas, err = repo.Deletar(db, c.ID, autora.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), linhas)

	existe, err = repo.Existe(db, c.ID)
	require.NoError(t, err)
	assert.False(t, existe)
}

func TestListarPorFeedbackDoMaisRecente(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()
	u := criarUsuario(t, db, "ana")

	antigo := Comentario{Conteudo: "primeiro", FeedbackID: 1, UsuarioID: u.ID}
	require.NoError(t, repo.Criar(db, &antigo))
	require.NoError(t, db.Model(&Comentario{}).Where("id = ?", antigo.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	recente := Comentario{Conteudo: "segundo", FeedbackID: 1, UsuarioID: u.ID}
	require.NoError(t, repo.Criar(db, &recente))
	require.NoError(t, repo.Criar(db, &Comentario{Conteudo: "de outro feedback", FeedbackID: 2, UsuarioID: u.ID}))

	comentarios, err := repo.ListarPorFeedback(db, 1)
	require.NoError(t, err)
	require.Len(t, comentarios, 2)
	assert.Equal(t, "segundo", comentarios[0].Conteudo)
	assert.Equal(t, "primeiro", comentarios[1].Conteudo)
	require.NotNil(t, comentarios[0].Usuario)
	assert.Equal(t, "ana", comentarios[0].Usuario.Nome)
}
