package config

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for the sandbox database.
func (s Sandbox) Dialector() (gorm.Dialector, error) {
	switch s.DBDriver {
	case "sqlite", "":
		return sqlite.Open(s.DBName), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
		return mysql.Open(dsn), nil
	case "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
		return sqlserver.Open(dsn), nil
	}
	return nil, errors.Errorf("unsupported DB_DRIVER: %s", s.DBDriver)
}

func (s Sandbox) OpenDB() (*gorm.DB, error) {
	dialector, err := s.Dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", s.DBDriver)
	}
	if s.DBDriver == "sqlite" || s.DBDriver == "" {
		// SQLite serializes writers; one connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite pool")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
