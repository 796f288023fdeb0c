package main

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"atrangi/internal/config"
	"atrangi/internal/store"
	"atrangi/internal/util"
	"atrangi/pkg/auth"
	"atrangi/pkg/domain"
)

// Seeds the catalog and the staff accounts. Idempotent: products and artists
// upsert by catalog id, existing users are left alone.
func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	now := time.Now().UTC()
	for _, p := range seedProducts(now) {
		if err := dataStore.SaveProduct(p); err != nil {
			log.Fatalf("seed product %d: %v", p.ID, err)
		}
	}
	for _, a := range seedArtists(now) {
		if err := dataStore.SaveArtist(a); err != nil {
			log.Fatalf("seed artist %d: %v", a.ID, err)
		}
	}
	if err := seedStaff(dataStore, now); err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	fmt.Println("Seeding complete.")
}

func seedStaff(dataStore store.Store, now time.Time) error {
	staff := []struct {
		name  string
		email string
		role  domain.Role
	}{
		{"Admin User", "admin@atrangi.com", domain.RoleAdmin},
		{"Creative Head", "creative@atrangi.com", domain.RoleCreativeHead},
		{"Content Team", "content@atrangi.com", domain.RoleContentTeam},
		{"Marketing & EM", "marketing@atrangi.com", domain.RoleMarketingEM},
	}
	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}
	for _, member := range staff {
		_, exists, err := dataStore.GetUserByEmail(member.email)
		if err != nil {
			return err
		}
		if exists {
			fmt.Printf("%s already exists.\n", member.role)
			continue
		}
		user := domain.User{
			ID:           util.NewID(),
			Name:         member.name,
			Email:        member.email,
			PasswordHash: passwordHash,
			Role:         member.role,
			Avatar:       "https://ui-avatars.com/api/?name=" + url.QueryEscape(member.name) + "&background=random",
			Cart:         []domain.CartItem{},
			Wishlist:     []domain.Product{},
			CreatedAt:    now,
		}
		if err := dataStore.SaveUser(user); err != nil {
			return err
		}
		fmt.Printf("Created %s: %s\n", member.role, member.email)
	}
	return nil
}

func seedProducts(now time.Time) []domain.Product {
	return []domain.Product{
		{
			ID:          1,
			Title:       "Ethereal Horizons",
			Artist:      "Sanya Malhotra",
			Price:       192000,
			Category:    "Resin Art",
			Image:       "https://images.unsplash.com/photo-1618331835717-801e976710b2?q=80&w=1000&auto=format&fit=crop",
			Description: "A stunning resin art piece capturing the essence of coastal sunsets. Layers of translucent resin create depth and movement.",
			Dimensions:  "24 x 36 inches",
			Materials:   "Epoxy resin, acrylic pigments, wood panel",
			InStock:     true,
			Featured:    true,
			CreatedAt:   now,
		},
		{
			ID:          2,
			Title:       "Golden Fracture",
			Artist:      "Arjun Kapoor",
			Price:       148000,
			Category:    "Sculptures",
			Image:       "https://images.unsplash.com/photo-1561214115-f2f134cc4912?q=80&w=1000&auto=format&fit=crop",
			Description: "Kintsugi-inspired sculpture highlighting the beauty of broken things. Gold leaf accents on ceramic.",
			Dimensions:  "12 x 12 x 18 inches",
			Materials:   "Ceramic, Gold leaf, Resin",
			InStock:     true,
			Featured:    true,
			CreatedAt:   now,
		},
		{
			ID:          3,
			Title:       "Silent Void",
			Artist:      "Isha Nair",
			Price:       256000,
			Category:    "Sketches & Drawings",
			Image:       "https://images.unsplash.com/photo-1629196914375-f7e48f477b6d?q=80&w=1000&auto=format&fit=crop",
			Description: "Minimalist charcoal drawing exploring negative space and silence. Framed in matte black wood.",
			Dimensions:  "30 x 40 inches",
			Materials:   "Charcoal, Cotton paper",
			InStock:     true,
			Featured:    true,
			CreatedAt:   now,
		},
		{
			ID:          4,
			Title:       "Urban Rhythm",
			Artist:      "Dev Patel",
			Price:       76000,
			Category:    "Home Decor",
			Image:       "https://images.unsplash.com/photo-1558591710-4b4a1ae0f04d?q=80&w=1000&auto=format&fit=crop",
			Description: "Limited edition print of digital artwork depicting the chaotic beauty of urban life.",
			Dimensions:  "20 x 20 inches",
			Materials:   "Archival pigment print",
			InStock:     true,
			CreatedAt:   now,
		},
		{
			ID:          5,
			Title:       "Cerulean Dreams",
			Artist:      "Sanya Malhotra",
			Price:       168000,
			Category:    "Resin Art",
			Image:       "https://images.unsplash.com/photo-1550684848-fac1c5b4e853?q=80&w=1000&auto=format&fit=crop",
			Description: "Deep blue resin layers mimicking the ocean depths. A calming piece for any space.",
			Dimensions:  "24 x 24 inches",
			Materials:   "Epoxy resin, pigments",
			InStock:     true,
			CreatedAt:   now,
		},
		{
			ID:          6,
			Title:       "Geometric Harmony",
			Artist:      "Rohan Mehra",
			Price:       96000,
			Category:    "Mold Art",
			Image:       "https://images.unsplash.com/photo-1518640467707-6811f4a6ab73?q=80&w=1000&auto=format&fit=crop",
			Description: "Cast concrete relief with geometric patterns. Industrial yet elegant.",
			Dimensions:  "18 x 18 inches",
			Materials:   "Concrete, Wood frame",
			InStock:     true,
			CreatedAt:   now,
		},
		{
			ID:          7,
			Title:       "Floral Whisper",
			Artist:      "Isha Nair",
			Price:       224000,
			Category:    "Sketches & Drawings",
			Image:       "https://images.unsplash.com/photo-1578320339916-a3810f63613c?q=80&w=1000&auto=format&fit=crop",
			Description: "Delicate pencil sketch of wilting flowers, capturing the fragility of nature.",
			Dimensions:  "16 x 20 inches",
			Materials:   "Graphite, Paper",
			InStock:     true,
			CreatedAt:   now,
		},
		{
			ID:          8,
			Title:       "Obsidian Flow",
			Artist:      "Arjun Kapoor",
			Price:       280000,
			Category:    "Sculptures",
			Image:       "https://images.unsplash.com/photo-1553531889-e6cf4d692b1b?q=80&w=1000&auto=format&fit=crop",
			Description: "Abstract bronze sculpture with a dark patina. Fluid forms that change from every angle.",
			Dimensions:  "10 x 10 x 24 inches",
			Materials:   "Bronze",
			InStock:     true,
			CreatedAt:   now,
		},
	}
}

func seedArtists(now time.Time) []domain.Artist {
	return []domain.Artist{
		{
			ID:         1,
			Name:       "Aarav Patel",
			Expertise:  "Contemporary Oil Painting",
			University: "Sir J.J. Institute of Applied Art, Mumbai",
			Image:      "https://images.unsplash.com/photo-1506794778202-cad84cf45f1d?q=80&w=1887&auto=format&fit=crop",
			Bio:        "Aarav explores the intersection of traditional Indian motifs and modern urban chaos through rich, textured oil paintings. His work often features vibrant colors and complex layering techniques.",
			CreatedAt:  now,
		},
		{
			ID:         2,
			Name:       "Zara Khan",
			Expertise:  "Digital Surrealism",
			University: "National Institute of Design, Ahmedabad",
			Image:      "https://images.unsplash.com/photo-1534528741775-53994a69daeb?q=80&w=1964&auto=format&fit=crop",
			Bio:        "Zara's digital art challenges reality, blending dreamlike imagery with sharp geometric forms. She specializes in creating immersive, otherworldly landscapes that provoke deep contemplation.",
			CreatedAt:  now,
		},
		{
			ID:         3,
			Name:       "Vihaan Singh",
			Expertise:  "Abstract Expressionism",
			University: "College of Art, Delhi",
			Image:      "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?q=80&w=1887&auto=format&fit=crop",
			Bio:        "Vihaan uses bold strokes and a monochromatic palette to express raw emotion. His large-scale canvases are a study in movement and energy, often inspired by the bustling streets of Delhi.",
			CreatedAt:  now,
		},
		{
			ID:         4,
			Name:       "Ananya Gupta",
			Expertise:  "Mixed Media Sculpture",
			University: "Kala Bhavana, Visva-Bharati University",
			Image:      "https://images.unsplash.com/photo-1494790108377-be9c29b29330?q=80&w=1887&auto=format&fit=crop",
			Bio:        "Ananya combines found objects with traditional sculpting materials to create thought-provoking pieces about sustainability and memory. Her work invites viewers to reconsider the value of everyday objects.",
			CreatedAt:  now,
		},
		{
			ID:         5,
			Name:       "Rohan Das",
			Expertise:  "Minimalist Photography",
			University: "Srishti Manipal Institute of Art, Design and Technology",
			Image:      "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?q=80&w=1887&auto=format&fit=crop",
			Bio:        "Rohan captures the beauty in simplicity. His black and white photography focuses on light, shadow, and form, turning ordinary scenes into striking geometric compositions.",
			CreatedAt:  now,
		},
		{
			ID:         6,
			Name:       "Ishita Sharma",
			Expertise:  "Traditional Madhubani Art",
			University: "Banaras Hindu University, Faculty of Visual Arts",
			Image:      "https://images.unsplash.com/photo-1544005313-94ddf0286df2?q=80&w=1888&auto=format&fit=crop",
			Bio:        "Ishita is dedicated to preserving and evolving the ancient art form of Madhubani. She infuses contemporary themes into traditional patterns, creating intricate narratives of modern Indian life.",
			CreatedAt:  now,
		},
	}
}
