package usuario

import (
	"gorm.io/gorm"

	"github.com/legistaq/api-feedback/internal/erros"
)

type Repository interface {
	Salvar(db *gorm.DB, u *Usuario) error
	BuscarPorID(db *gorm.DB, id uint) (*Usuario, error)
	BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error)
	ListarTodos(db *gorm.DB) ([]Usuario, error)
	ListarPorPapel(db *gorm.DB, papel string) ([]Usuario, error)
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error
	AtualizarPapel(db *gorm.DB, id uint, papel string) error
	Deletar(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, u *Usuario) error {
	return db.Save(u).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Usuario, error) {
	var u Usuario
	err := db.First(&u, id).Error
	return &u, err
}

func (r *repositoryImpl) BuscarPorEmail(db *gorm.DB, email string) (*Usuario, error) {
	var u Usuario
	err := db.Where("email = ?", email).First(&u).Error
	return &u, err
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Usuario, error) {
	var usuarios []Usuario
	err := db.Order("nome asc").Find(&usuarios).Error
	return usuarios, err
}

func (r *repositoryImpl) ListarPorPapel(db *gorm.DB, papel string) ([]Usuario, error) {
	var usuarios []Usuario
	err := db.Where("papel = ?", papel).Order("nome asc").Find(&usuarios).Error
	return usuarios, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) error {
	res := db.Model(&Usuario{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existe int64
		db.Model(&Usuario{}).Where("id = ?", id).Count(&existe)
		if existe == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *repositoryImpl) AtualizarPapel(db *gorm.DB, id uint, papel string) error {
	res := db.Model(&Usuario{}).Where("id = ?", id).Update("papel", papel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deletar remove fisicamente, recusando enquanto houver feedbacks
// enviados ou recebidos pelo usuário; checagem e remoção rodam na
// mesma transação. A tabela de feedbacks é consultada pelo nome para
// não acoplar este pacote ao agregado.
func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var referencias int64
		if err := tx.Table("feedbacks").
			Where("revisor_id = ? OR taquigrafo_id = ?", id, id).
			Count(&referencias).Error; err != nil {
			return err
		}
		if referencias > 0 {
			return erros.Conflito("usuário referenciado por feedbacks não pode ser removido")
		}
		return tx.Unscoped().Delete(&Usuario{}, id).Error
	})
}
