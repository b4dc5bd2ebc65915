// Package all registers every storage backend with the factory.
// cmd binaries blank-import it so any configured kind is available.
package all

import (
	_ "github.com/laptevshr/crLoadCSVData/internal/storage/mongo"
	_ "github.com/laptevshr/crLoadCSVData/internal/storage/postgres"
	_ "github.com/laptevshr/crLoadCSVData/internal/storage/sqlite"
)
