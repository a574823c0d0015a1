// Command create-admin adds an ADMIN account. The password is read from stdin, or generated with -generate.
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
)

// generateRandomString creates a random hex string of 2n characters
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func main() {
	email := flag.String("email", "", "admin email address")
	generate := flag.Bool("generate", false, "generate a random password instead of prompting")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	if *email == "" {
		*email = prompt(reader, "Enter email: ")
	}
	*email = strings.ToLower(strings.TrimSpace(*email))
	if !strings.Contains(*email, "@") {
		log.Fatalf("invalid email %q", *email)
	}

	var password string
	if *generate {
		password = generateRandomString(12)
	} else {
		password = prompt(reader, "Enter password: ")
		if prompt(reader, "Confirm password: ") != password {
			log.Fatal("Passwords do not match.")
		}
		if len(password) < 8 {
			log.Fatal("Password must be at least 8 characters.")
		}
	}

	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewDBInstance(cfg.DB)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer db.Close()

	var existing model.User
	err = db.Where("email = ?", *email).First(&existing).Error
	if err == nil {
		log.Fatalf("Email %s already taken", *email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up email: %v", err)
	}

	// Hash the password before storing
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}
	hash := string(hashed)

	admin := model.User{
		Email:         *email,
		PasswordHash:  &hash,
		Role:          model.RoleAdmin,
		EmailVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("failed to create admin: ", database.TranslateError(err, "admin"))
	}

	fmt.Println("Admin created successfully!")
	fmt.Println("======================================")
	fmt.Printf("Email:    %s\n", admin.Email)
	if *generate {
		fmt.Printf("Password: %s\n", password)
	}
	fmt.Println("======================================")
}
