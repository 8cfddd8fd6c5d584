package main

import (
	"flag"

	"mifile/internal/config"
	"mifile/internal/db"
	"mifile/internal/server"
	"mifile/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// 初始化配置
	conf, err := config.FromFile(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", "path", *configPath, "error", err)
	}
	if err := logger.InitLogger(conf.Log.Level, conf.Log.File); err != nil {
		logger.Fatal("failed to init logger", "error", err)
	}
	defer logger.Sync()

	// 初始化数据库
	database, err := db.New(conf)
	if err != nil {
		logger.Fatal("failed to open db", "error", err)
	}
	defer database.Close()

	// 启动服务器
	s := server.New(database, conf.Server)
	if err := s.Run(conf.Server.Addr); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
