package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"pagepack/internal/api"
	"pagepack/internal/db"
	"pagepack/internal/fetch"
	"pagepack/internal/logger"
	"pagepack/internal/pack"
)

var version = "dev"

func main() {
	port := flag.Int("port", 8089, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path (default: pagepack.db in the working directory)")
	flag.Parse()

	logger.Banner(version)

	path := *dbPath
	if path == "" {
		path = db.DefaultPath()
	}

	database, err := db.Open(path)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	fetcher := fetch.NewClient()
	coordinator := pack.New(database, database, fetcher)
	srv := api.NewServer(coordinator, database, version)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
