// Package main provides a tool to seed the database with sample catalog data.
//
// It creates a handful of users, books, and reviews so the listing, search,
// and rating endpoints have something to work with during development.
//
// Usage:
//
//	DATA_PATH=~/shelfscore go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfscore/shelfscore-server/internal/auth"
	"github.com/shelfscore/shelfscore-server/internal/domain"
	"github.com/shelfscore/shelfscore-server/internal/id"
	"github.com/shelfscore/shelfscore-server/internal/store"
	"github.com/shelfscore/shelfscore-server/internal/util"
)

type seedBook struct {
	title       string
	author      string
	description string
	genre       domain.Genre
	year        int
}

var books = []seedBook{
	{"The Hobbit", "J.R.R. Tolkien", "Bilbo Baggins is swept into a quest to reclaim the Lonely Mountain.", domain.GenreFantasy, 1937},
	{"Dune", "Frank Herbert", "Paul Atreides leads desert rebels on the spice planet Arrakis.", domain.GenreScienceFiction, 1965},
	{"In Cold Blood", "Truman Capote", "A reconstruction of the 1959 murders of a Kansas farm family.", domain.GenreNonFiction, 1966},
	{"The Name of the Rose", "Umberto Eco", "A Franciscan friar investigates deaths at a medieval abbey.", domain.GenreMystery, 1980},
	{"Pride and Prejudice", "Jane Austen", "Elizabeth Bennet navigates manners, marriage, and Mr. Darcy.", domain.GenreRomance, 1813},
	{"The Shining", "Stephen King", "A writer's winter caretaking job at an isolated hotel goes wrong.", domain.GenreThriller, 1977},
}

var reviewTexts = []string{
	"Couldn't put it down, finished it in two sittings.",
	"A slow start but the second half more than makes up for it.",
	"The prose is wonderful even when the plot meanders a little.",
	"Re-read this after many years and it holds up remarkably well.",
	"Not what I expected from the cover, in the best possible way.",
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/shelfscore")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := createUsers(ctx, s)
	created := createBooks(ctx, s, users)
	createReviews(ctx, s, users, created)

	fmt.Println("Done. Restart the server to pick up search indexing.")
}

func createUsers(ctx context.Context, s *store.Store) []*domain.User {
	names := []struct {
		email string
		name  string
	}{
		{"alice@example.com", "Alice"},
		{"bob@example.com", "Bob"},
		{"carol@example.com", "Carol"},
		{"dave@example.com", "Dave"},
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var users []*domain.User
	for _, n := range names {
		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		now := time.Now()
		user := &domain.User{
			Record:       domain.Record{ID: userID, CreatedAt: now, UpdatedAt: now},
			Email:        n.email,
			PasswordHash: hash,
			DisplayName:  n.name,
			LastLoginAt:  now,
		}

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", n.email, err)
		}
		fmt.Printf("Created user %s (%s)\n", n.name, userID)
		users = append(users, user)
	}
	return users
}

func createBooks(ctx context.Context, s *store.Store, users []*domain.User) []*domain.Book {
	var created []*domain.Book
	for i, b := range books {
		bookID, err := id.Generate("book")
		if err != nil {
			log.Fatalf("Failed to generate book ID: %v", err)
		}

		now := time.Now()
		book := &domain.Book{
			Record:        domain.Record{ID: bookID, CreatedAt: now, UpdatedAt: now},
			Title:         b.title,
			Slug:          util.Slugify(b.title),
			Author:        b.author,
			Description:   b.description,
			Genre:         b.genre,
			AddedBy:       users[i%len(users)].ID,
			PublishedYear: b.year,
		}

		if err := s.CreateBook(ctx, book); err != nil {
			log.Fatalf("Failed to create book %q: %v", b.title, err)
		}
		fmt.Printf("Created book %q (%s)\n", b.title, book.Slug)
		created = append(created, book)
	}
	return created
}

func createReviews(ctx context.Context, s *store.Store, users []*domain.User, books []*domain.Book) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, book := range books {
		// Each book gets reviews from a random subset of users.
		for _, user := range users {
			if user.ID == book.AddedBy || rng.Intn(3) == 0 {
				continue
			}

			reviewID, err := id.Generate("review")
			if err != nil {
				log.Fatalf("Failed to generate review ID: %v", err)
			}

			now := time.Now()
			review := &domain.Review{
				Record:     domain.Record{ID: reviewID, CreatedAt: now, UpdatedAt: now},
				BookID:     book.ID,
				UserID:     user.ID,
				Rating:     2 + rng.Intn(4),
				ReviewText: reviewTexts[rng.Intn(len(reviewTexts))],
			}

			if err := s.CreateReview(ctx, review); err != nil {
				log.Fatalf("Failed to create review: %v", err)
			}
		}

		updated, err := s.RecomputeBookRating(ctx, book.ID)
		if err != nil {
			log.Fatalf("Failed to recompute rating for %q: %v", book.Title, err)
		}
		fmt.Printf("Seeded %q with %d reviews (avg %.1f)\n", book.Title, updated.ReviewCount, updated.AverageRating)
	}
}
