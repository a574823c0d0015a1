// Command-line tool to clean the database by dropping all tables in the public schema.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
)

// SQL command to drop all tables, goose's version table included
const dropAll = `
DO $$
	DECLARE
		r RECORD;
	BEGIN
		FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
			EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
		END LOOP;
	END $$;
`

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if !*yes {
		fmt.Println("WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.")
		fmt.Println("This action is irreversible. Do you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("Failed to read input: %v", err)
		}
		if strings.TrimSpace(strings.ToLower(input)) != "yes" {
			fmt.Println("Operation cancelled.")
			return
		}
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	dsn, err := cfg.DB.DSN()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	// Connect without migrating: the point is to remove the schema.
	db, err := database.Open(dsn, cfg.DB.Debug)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	if err := db.Exec(dropAll).Error; err != nil {
		log.Fatalf("failed to execute drop command: %v", err)
	}

	fmt.Println("All tables dropped successfully.")
}
