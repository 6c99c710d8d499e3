package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/trattoria-api/internal/config"
	"github.com/franciscosanchezn/trattoria-api/internal/database"
	"github.com/franciscosanchezn/trattoria-api/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	username := flag.String("username", "admin", "Employee that owns the client")
	name := flag.String("name", "Development client", "Client display name")
	scopes := flag.String("scopes", "read write", "Space separated scopes")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()
	user, err := services.NewUserService(db).GetUserByUsername(ctx, *username)
	if err != nil {
		log.Fatalf("Failed to find user %q: %v", *username, err)
	}

	client, secret, err := services.NewClientService(db).CreateClient(ctx, user.ID, services.NewClient{
		Name:   *name,
		Domain: "http://localhost",
		Scopes: *scopes,
	})
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("✓ Development OAuth client created for '%s'!\n", user.Username)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:%d/oauth/token \\\n", conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}
