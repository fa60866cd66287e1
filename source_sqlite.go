package main

import (
	"fmt"
	"os"

	"github.com/mohammadazar1/acad/internal"
	"github.com/mohammadazar1/acad/internal/database"
	"github.com/mohammadazar1/acad/internal/store"
)

const sqliteSource = "sqlite"

func init() {
	internal.RegisterParser(sqliteSource, internal.ParserFunc(func(path string) (*internal.AcademyData, error) {
		return loadDatabase(path, "")
	}), ".db", ".sqlite")
}

// loadDatabase reads one academy from a SQLite file written by import.
func loadDatabase(path, academy string) (*internal.AcademyData, error) {
	if path != database.Memory {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
	}

	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	s := store.New(db)
	a, err := resolveAcademy(s, academy)
	if err != nil {
		return nil, err
	}
	return s.LoadAcademyData(a.ID)
}
