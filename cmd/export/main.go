package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bandprep/internal/config"
	"bandprep/internal/database"
	"bandprep/internal/models"
	"bandprep/internal/repository"
	"bandprep/internal/validation"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: sets_YYYYMMDD_HHMMSS.json)")
	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	setRepo := repository.NewSetRepository(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, setRepo, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, setRepo, *importInput)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, setRepo *repository.SetRepository, outputPath string) {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("sets_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	sets, err := setRepo.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load practice sets: %v", err)
	}

	data, err := json.MarshalIndent(sets, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode practice sets: %v", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}

	log.Printf("Exported %d practice sets to %s", len(sets), outputPath)
}

func handleImport(ctx context.Context, setRepo *repository.SetRepository, inputPath string) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	var sets []*models.PracticeSet
	if err := json.Unmarshal(data, &sets); err != nil {
		log.Fatalf("Failed to parse input file: %v", err)
	}

	// Saves replace any existing tree with the same id, so re-running an
	// import is safe.
	for _, set := range sets {
		if err := validation.ValidatePracticeSet(set); err != nil {
			log.Fatalf("Invalid practice set %q: %v", set.ID, err)
		}
		if err := setRepo.Save(ctx, set); err != nil {
			log.Fatalf("Failed to import practice set %q: %v", set.ID, err)
		}
		log.Printf("Imported practice set: %s (%s)", set.Title, set.ID)
	}

	log.Printf("Import complete: %d practice sets", len(sets))
}

func printUsage() {
	fmt.Println("BandPrep Practice Set Export Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  export export [options]    Export all practice sets to a JSON file")
	fmt.Println("  export import [options]    Import practice sets from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: sets_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH    SQLite database path (default: ./bandprep.db)")
	fmt.Println("  DB_URL     PostgreSQL or MySQL connection URL")
}
