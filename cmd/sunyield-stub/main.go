// sunyield-stub serves the in-process stub backend over a real port, seeded
// with demo data, so the client can be exercised end to end without the
// production platform.
package main

import (
	"flag"
	"log"

	"github.com/sunyield/sunyield-go/apitest"
	"github.com/sunyield/sunyield-go/models"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	server, err := apitest.New()
	if err != nil {
		log.Fatalf("Failed to start stub server: %v", err)
	}

	if err := seed(server); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Printf("Starting SunYield stub API on %s", *addr)
	log.Printf("Demo user:  demo@sunyield.in / password123")
	log.Printf("Demo admin: admin@sunyield.in / password123")
	if err := server.Engine().Run(*addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func seed(server *apitest.Server) error {
	user, err := server.CreateUser("demo@sunyield.in", "password123", 5000)
	if err != nil {
		return err
	}
	if err := server.ApproveKYCFor(user.ID); err != nil {
		return err
	}
	if _, err := server.CreateAdmin("admin@sunyield.in", "password123"); err != nil {
		return err
	}

	projects := []struct {
		name            string
		minContribution float64
		capacity        float64
	}{
		{"Thar Desert Solar Park", 500, 2500},
		{"Kutch Rooftop Collective", 1000, 1200},
		{"Bengaluru Metro Canopy", 750, 800},
	}
	for _, p := range projects {
		if _, err := server.CreateProject(p.name, p.minContribution, p.capacity); err != nil {
			return err
		}
	}

	if _, err := server.CreateCoupon("SOLAR10", models.DiscountPercentage, 10, 500, 200); err != nil {
		return err
	}
	if _, err := server.CreateCoupon("FLAT100", models.DiscountFixed, 100, 1000, 0); err != nil {
		return err
	}
	return nil
}
