package db

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Conectar abre a conexão com o Postgres a partir das variáveis de
// ambiente DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD e
// DB_SSL_MODE_DISABLE. A aplicação falha na inicialização se a conexão
// não puder ser estabelecida; nenhum componente trabalha com handle nulo.
func Conectar() (*gorm.DB, error) {
	host := os.Getenv("DB_HOST")
	porta, err := strconv.ParseUint(os.Getenv("DB_PORT"), 10, 32)
	if err != nil {
		porta = 5432
	}
	nome := os.Getenv("DB_NAME")
	usuario := os.Getenv("DB_USER")
	senha := os.Getenv("DB_PASSWORD")

	var sslMode string
	if os.Getenv("DB_SSL_MODE_DISABLE") == "true" {
		sslMode = " sslmode=disable"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		host, usuario, senha, nome, porta, sslMode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}

	return database, nil
}
