// Package main provides a read-only inspection tool for the ShelfScore database.
//
// It prints record counts per keyspace and flags books whose denormalized
// rating aggregate disagrees with their stored reviews.
//
// Usage:
//
//	DATA_PATH=~/shelfscore go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfscore/shelfscore-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/shelfscore")
	}
	dbPath := filepath.Join(dataPath, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	counts := map[string]int{}
	for _, prefix := range []string{"book:", "review:", "user:", "session:", "idx:"} {
		n, err := countPrefix(db, prefix)
		if err != nil {
			log.Fatalf("Failed to count %q: %v", prefix, err)
		}
		counts[prefix] = n
	}

	fmt.Printf("Books:    %d\n", counts["book:"])
	fmt.Printf("Reviews:  %d\n", counts["review:"])
	fmt.Printf("Users:    %d\n", counts["user:"])
	fmt.Printf("Sessions: %d\n", counts["session:"])
	fmt.Printf("Indexes:  %d\n", counts["idx:"])
	fmt.Println()

	if err := checkAggregates(db); err != nil {
		log.Fatalf("Failed to verify rating aggregates: %v", err)
	}
}

func countPrefix(db *badger.DB, prefix string) (int, error) {
	count := 0
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// checkAggregates recounts reviews per book and compares against the stored
// denormalized aggregate.
func checkAggregates(db *badger.DB) error {
	reviewCounts := map[string]int{}
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("review:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var review domain.Review
				if err := json.Unmarshal(val, &review); err != nil {
					return err
				}
				reviewCounts[review.BookID]++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	mismatches := 0
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, "book:") && strings.Count(key, ":") > 1 {
				continue
			}

			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				want := reviewCounts[book.ID]
				if book.ReviewCount != want {
					mismatches++
					fmt.Printf("MISMATCH %s (%q): stored review_count=%d, actual reviews=%d\n",
						book.ID, book.Title, book.ReviewCount, want)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if mismatches == 0 {
		fmt.Println("All book rating aggregates match their reviews.")
	} else {
		fmt.Printf("%d book(s) with stale aggregates. Any review write recomputes them.\n", mismatches)
	}
	return nil
}
