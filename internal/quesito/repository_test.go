package quesito

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/legistaq/api-feedback/internal/erros"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Quesito{}))
	// Tabela mínima do agregado de feedbacks, consultada pelo nome em
	// Deletar e ContarReferencias.
	require.NoError(t, db.Exec(
		"CREATE TABLE feedback_quesitos (id integer primary key autoincrement, quesito_id integer)").Error)
	return db
}

func TestListarOrdenaPorOrdem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	require.NoError(t, repo.Criar(db, &Quesito{Titulo: "Pontuação", Ordem: 2, Ativo: true}))
	require.NoError(t, repo.Criar(db, &Quesito{Titulo: "Grafia", Ordem: 1, Ativo: true}))
	require.NoError(t, repo.Criar(db, &Quesito{Titulo: "Formatação", Ordem: 3, Ativo: true}))

	quesitos, err := repo.Listar(db, Filtro{})
	require.NoError(t, err)
	require.Len(t, quesitos, 3)
	assert.Equal(t, "Grafia", quesitos[0].Titulo)
	assert.Equal(t, "Pontuação", quesitos[1].Titulo)
	assert.Equal(t, "Formatação", quesitos[2].Titulo)
}

func TestListarFiltraPorAtivo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	require.NoError(t, repo.Criar(db, &Quesito{Titulo: "Ativo", Ativo: true}))
	require.NoError(t, repo.Criar(db, &Quesito{Titulo: "Desativado", Ativo: false}))

	ativo := true
	quesitos, err := repo.Listar(db, Filtro{Ativo: &ativo})
	require.NoError(t, err)
	require.Len(t, quesitos, 1)
	assert.Equal(t, "Ativo", quesitos[0].Titulo)

	total, err := repo.Contar(db, Filtro{Ativo: &ativo})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = repo.Contar(db, Filtro{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestAtualizarQuesitoInexistente(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	err := repo.Atualizar(db, 999, map[string]interface{}{"titulo": "Novo"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDesativarNaoApagaRegistro(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	q := Quesito{Titulo: "Grafia", Ativo: true}
	require.NoError(t, repo.Criar(db, &q))

	require.NoError(t, repo.Atualizar(db, q.ID, map[string]interface{}{"ativo": false}))

	carregado, err := repo.BuscarPorID(db, q.ID)
	require.NoError(t, err)
	assert.False(t, carregado.Ativo)
}

func TestReordenarAplicaTodasAsPosicoes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	a := Quesito{Titulo: "A", Ordem: 1, Ativo: true}
	b := Quesito{Titulo: "B", Ordem: 2, Ativo: true}
	require.NoError(t, repo.Criar(db, &a))
	require.NoError(t, repo.Criar(db, &b))

	require.NoError(t, repo.Reordenar(db, []ReordenarItem{
		{ID: a.ID, Ordem: 2},
		{ID: b.ID, Ordem: 1},
	}))

	quesitos, err := repo.Listar(db, Filtro{})
	require.NoError(t, err)
	require.Len(t, quesitos, 2)
	assert.Equal(t, "B", quesitos[0].Titulo)
	assert.Equal(t, "A", quesitos[1].Titulo)
}

func TestDeletarRemoveFisicamente(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	q := Quesito{Titulo: "Descartável", Ativo: true}
	require.NoError(t, repo.Criar(db, &q))
	require.NoError(t, repo.Deletar(db, q.ID))

	_, err := repo.BuscarPorID(db, q.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var total int64
	require.NoError(t, db.Unscoped().Model(&Quesito{}).Count(&total).Error)
	assert.Equal(t, int64(0), total)
}

func TestDeletarQuesitoReferenciadoEhRecusado(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository()

	q := Quesito{Titulo: "Grafia", Ativo: true}
	require.NoError(t, repo.Criar(db, &q))
	require.NoError(t, db.Exec(
		"INSERT INTO feedback_quesitos (quesito_id) VALUES (?)", q.ID).Error)

	err := repo.Deletar(db, q.ID)
	assert.ErrorIs(t, err, erros.ErrConflito)

	_, err = repo.BuscarPorID(db, q.ID)
	assert.NoError(t, err)
}
