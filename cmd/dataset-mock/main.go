// dataset-mock serves a local JSON dump with the same pagination contract as
// the real dataset API, for offline ingestion runs.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/playrank/playrank/internal/dataset"
)

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-games.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var rows []dataset.GameRow
	if err := json.Unmarshal(file, &rows); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil || offset < 0 {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		length, err := strconv.Atoi(r.URL.Query().Get("length"))
		if err != nil || length < 1 || length > 100 {
			http.Error(w, "invalid length", http.StatusBadRequest)
			return
		}

		page := dataset.PageResponse{NumRowsTotal: len(rows)}
		end := offset + length
		if end > len(rows) {
			end = len(rows)
		}
		for i := offset; i < end; i++ {
			page.Rows = append(page.Rows, dataset.RowEnvelope{RowIdx: i, Row: rows[i]})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock dataset listening on %s (%d rows)", addr, len(rows))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
