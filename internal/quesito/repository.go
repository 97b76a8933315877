package quesito

import (
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/erros"
)

// Filtro de listagem; nil em Ativo significa "todos".
type Filtro struct {
	Ativo *bool
}

// ReordenarItem é um par (id, ordem) usado na reordenação em lote.
type ReordenarItem struct {
	ID    uint `json:"id"`
	Ordem int  `json:"ordem"`
}

type Repository interface {
	Criar(db *gorm.DB, q *Quesito) error
	Listar(db *gorm.DB, filtro Filtro) ([]Quesito, error)
	BuscarPorID(db *gorm.DB, id uint) (*Quesito, error)
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error
	Deletar(db *gorm.DB, id uint) error
	Reordenar(db *gorm.DB, itens []ReordenarItem) error
	Contar(db *gorm.DB, filtro Filtro) (int64, error)
	ContarReferencias(db *gorm.DB, id uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, q *Quesito) error {
	return db.Create(q).Error
}

func (r *repositoryImpl) Listar(db *gorm.DB, filtro Filtro) ([]Quesito, error) {
	var quesitos []Quesito
	consulta := db.Order("ordem asc, created_at asc")
	if filtro.Ativo != nil {
		consulta = consulta.Where("ativo = ?", *filtro.Ativo)
	}
	err := consulta.Find(&quesitos).Error
	return quesitos, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Quesito, error) {
	var q Quesito
	err := db.First(&q, id).Error
	return &q, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error {
	res := db.Model(&Quesito{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existe int64
		db.Model(&Quesito{}).Where("id = ?", id).Count(&existe)
		if existe == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Deletar remove fisicamente. A checagem de referências e a remoção
// rodam na mesma transação; uma entrada criada no meio do caminho não
// fica órfã.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		referencias, err := r.ContarReferencias(tx, id)
		if err != nil {
			return err
		}
		if referencias > 0 {
			return erros.Conflito("quesito em uso por feedbacks; desative em vez de remover")
		}
		return tx.Unscoped().Delete(&Quesito{}, id).Error
	})
}

// Reordenar aplica todas as novas posições em uma única transação.
func (r *repositoryImpl) Reordenar(db *gorm.DB, itens []ReordenarItem) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, item := range itens {
			if err := tx.Model(&Quesito{}).Where("id = ?", item.ID).
				Update("ordem", item.Ordem).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) Contar(db *gorm.DB, filtro Filtro) (int64, error) {
	var total int64
	consulta := db.Model(&Quesito{})
	if filtro.Ativo != nil {
		consulta = consulta.Where("ativo = ?", *filtro.Ativo)
	}
	err := consulta.Count(&total).Error
	return total, err
}

// ContarReferencias conta entradas de feedback que apontam para o quesito.
// A tabela é consultada pelo nome para não acoplar o catálogo ao agregado.
func (r *repositoryImpl) ContarReferencias(db *gorm.DB, id uint) (int64, error) {
	var total int64
	err := db.Table("feedback_quesitos").Where("quesito_id = ?", id).Count(&total).Error
	return total, err
}
