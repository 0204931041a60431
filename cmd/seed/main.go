// Seeds a development database with registry-validated objective types and a
// set of objectives for the current fiscal year.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/kompas/kompas/internal/adapter/persistence"
	"github.com/kompas/kompas/internal/config"
	"github.com/kompas/kompas/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	ctx := context.Background()
	registry := domain.NewRegistry()
	typeRepo := persistence.NewPostgresObjectiveTypeRepository(db)
	objectiveRepo := persistence.NewPostgresObjectiveRepository(db)

	fiscalYear := fmt.Sprintf("FY%d", time.Now().Year())

	seedTypes := []struct {
		code       string
		label      string
		category   string
		unit       domain.Unit
		entityType domain.EntityType
		operation  domain.Operation
		valueField string
	}{
		{"OPP_WON_AMOUNT", "Opportunities won - amount", "Sales", domain.UnitCurrency, domain.EntityOpportunity, domain.OperationWon, "amount"},
		{"OPP_WON_COUNT", "Opportunities won - count", "Sales", domain.UnitCount, domain.EntityOpportunity, domain.OperationWon, "count"},
		{"CAMPAIGN_LAUNCHED_COUNT", "Campaigns launched", "Prospecting", domain.UnitCount, domain.EntityCampaign, domain.OperationLaunched, "count"},
		{"MISSION_COMPLETED_DAYS", "Missions completed - billed days", "Delivery", domain.UnitDuration, domain.EntityMission, domain.OperationCompleted, "billed_days"},
		{"INVOICE_PAID_AMOUNT", "Invoices paid - amount excl. tax", "Finance", domain.UnitCurrency, domain.EntityInvoice, domain.OperationPaid, "total_excl_tax"},
		{"CONTRACT_SIGNED_VALUE", "Contracts signed - annual value", "Sales", domain.UnitCurrency, domain.EntityContract, domain.OperationSigned, "annual_value"},
	}

	created := 0
	for _, s := range seedTypes {
		if err := registry.Validate(s.entityType, s.operation, s.unit, s.valueField); err != nil {
			log.Fatalf("seed type %s rejected by registry: %v", s.code, err)
		}
		objectiveType := domain.NewObjectiveType(s.code, s.label, s.category, s.unit, s.entityType, s.operation, s.valueField)
		if err := typeRepo.Create(ctx, objectiveType); err != nil {
			if err == domain.ErrDuplicateCode {
				log.Printf("objective type %s already exists, skipping", s.code)
				continue
			}
			log.Fatalf("failed to seed objective type %s: %v", s.code, err)
		}
		created++

		// One global and one sample business-unit objective per type
		global := domain.NewObjective(domain.LevelGlobal, objectiveType.ID, fiscalYear, s.label+" (company)", 100000, nil)
		if err := objectiveRepo.Create(ctx, global); err != nil {
			log.Fatalf("failed to seed global objective for %s: %v", s.code, err)
		}

		bu := "bu-consulting"
		scoped := domain.NewObjective(domain.LevelBusinessUnit, objectiveType.ID, fiscalYear, s.label+" (consulting)", 40000, &bu)
		if err := objectiveRepo.Create(ctx, scoped); err != nil {
			log.Fatalf("failed to seed business-unit objective for %s: %v", s.code, err)
		}
	}

	log.Printf("seeding complete: %d objective types created for %s", created, fiscalYear)
}
