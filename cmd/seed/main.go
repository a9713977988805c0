package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/karaoke-social-api/config"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

var catalog = []*entity.Gift{
	entity.NewGift("Rose", "A single rose for a sweet voice", "/gifts/rose.png", 5, entity.TierBasic),
	entity.NewGift("Golden Mic", "For a performance worth remembering", "/gifts/mic.png", 50, entity.TierSpecial),
	entity.NewGift("Crown", "Royalty of the stage", "/gifts/crown.png", 200, entity.TierRare),
	entity.NewGift("Trophy", "Legend of the night", "/gifts/trophy.png", 1000, entity.TierLegendary),
}

type demoSong struct {
	title, artist, lyrics string
	duration, difficulty  int
	genre                 entity.Genre
}

var songs = []demoSong{
	{"Evidências", "Chitãozinho & Xororó", "Quando eu digo que deixei de te amar...", 280, 3, entity.GenreSertanejo},
	{"Bohemian Rhapsody", "Queen", "Is this the real life? Is this just fantasy?", 355, 5, entity.GenreRock},
	{"Garota de Ipanema", "Tom Jobim", "Olha que coisa mais linda...", 320, 2, entity.GenreMPB},
	{"Shallow", "Lady Gaga", "Tell me something, girl...", 215, 4, entity.GenrePop},
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := getenv("SEED_ADMIN_EMAIL", "admin@karaoke.local")
	password := getenv("SEED_ADMIN_PASSWORD", "password123")
	name := "Stage Admin"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, coins)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, email, hash, name, cfg.StartingCoins).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)

	roleIDs := map[string]string{}
	for _, role := range []string{entity.RoleAdmin, entity.RoleUser} {
		var roleID string
		if err := db.QueryRow(`
			INSERT INTO roles (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET updated_at = now()
			RETURNING id
		`, role).Scan(&roleID); err != nil {
			log.Fatalf("failed to upsert role %s: %v", role, err)
		}
		roleIDs[role] = roleID
	}
	fmt.Printf("roles ensured: admin=%s user=%s\n", roleIDs[entity.RoleAdmin], roleIDs[entity.RoleUser])

	for _, role := range []string{entity.RoleAdmin, entity.RoleUser} {
		if _, err := db.Exec(`
			INSERT INTO user_roles (user_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, id, roleIDs[role]); err != nil {
			log.Fatalf("failed to assign %s role: %v", role, err)
		}
	}

	// Catalog rows are matched by name so the seed can run repeatedly.
	for _, g := range catalog {
		res, err := db.Exec(`
			INSERT INTO gifts (name, description, icon_url, value, tier, bonus_points, available)
			SELECT $1, $2, $3, $4, $5, $6, $7
			WHERE NOT EXISTS (SELECT 1 FROM gifts WHERE name = $1)
		`, g.Name, g.Description, g.IconURL, g.Value, string(g.Tier), g.BonusPoints, g.Available)
		if err != nil {
			log.Fatalf("failed to seed gift %s: %v", g.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			fmt.Printf("seeded gift: %s (%s, %d coins)\n", g.Name, g.Tier, g.Value)
		}
	}

	for _, s := range songs {
		res, err := db.Exec(`
			INSERT INTO songs (title, artist, lyrics, duration_seconds, audio_url, genre, difficulty)
			SELECT $1, $2, $3, $4, '', $5, $6
			WHERE NOT EXISTS (SELECT 1 FROM songs WHERE title = $1 AND artist = $2)
		`, s.title, s.artist, s.lyrics, s.duration, string(s.genre), s.difficulty)
		if err != nil {
			log.Fatalf("failed to seed song %s: %v", s.title, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			fmt.Printf("seeded song: %s - %s\n", s.artist, s.title)
		}
	}
}
