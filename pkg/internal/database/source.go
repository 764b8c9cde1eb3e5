package database

import (
	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var C *gorm.DB

func NewSource() error {
	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		dsn = "meridiem.db"
	}

	source, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	// Single local writer; sqlite handles concurrency poorly beyond that.
	if conn, err := source.DB(); err == nil {
		conn.SetMaxOpenConns(1)
	}

	C = source
	return nil
}
