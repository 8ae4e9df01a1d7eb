package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/database"
	"github.com/stemsi/feeledger-backend/internal/latefee"
	"github.com/stemsi/feeledger-backend/internal/logger"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/repository"
	"github.com/stemsi/feeledger-backend/internal/service"
)

func main() {
	var (
		rawSchool    string
		classID      int
		section      string
		academicYear string
		students     int
	)
	flag.StringVar(&rawSchool, "school", "DEMO", "School code to seed")
	flag.IntVar(&classID, "class", 7, "Class id for the demo structure")
	flag.StringVar(&section, "section", "A", "Section for the demo structure")
	flag.StringVar(&academicYear, "year", "2025-26", "Academic year")
	flag.IntVar(&students, "students", 50, "Number of students to bill, ids start at 1")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	school, err := model.ParseSchoolCode(rawSchool)
	if err != nil {
		log.Fatal().Err(err).Str("school", rawSchool).Msg("Invalid school code")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	fineRepo := repository.NewFeeFineRepository(pool)
	structureRepo := repository.NewFeeStructureRepository(pool)
	studentFeeRepo := repository.NewStudentFeeRepository(pool)

	clock := service.SchoolClock(cfg.Location())
	fineService := service.NewFeeFineService(fineRepo, repository.NewFineCache(rdb, cfg.FineCacheTTL), log)
	structureService := service.NewFeeStructureService(structureRepo, studentFeeRepo, fineRepo, log, clock)

	fmt.Printf("=== Seeding fee data for %s ===\n", school)

	fine, err := fineService.Create(ctx, school, model.CreateFeeFineRequest{
		SchoolCode:          school.String(),
		Name:                "Late tuition",
		FineType:            model.FineTypeDaily,
		Value:               decPtr("5"),
		ApplicableAfterDays: 7,
		MaxFineAmount:       decPtr("150"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fine")
	}
	fmt.Printf("Created fine %q with ID: %d\n", fine.Name, fine.ID)

	structure, err := structureService.Create(ctx, school, model.CreateFeeStructureRequest{
		SchoolCode:   school.String(),
		Name:         fmt.Sprintf("Tuition %s class %d%s", academicYear, classID, section),
		Component:    "tuition",
		ClassID:      classID,
		Section:      section,
		AcademicYear: academicYear,
		Amount:       decPtr("1200"),
		LateFeeType:  latefee.TypeNone,
		FineID:       &fine.ID,
	})
	if errors.Is(err, service.ErrDuplicateActiveStructure) {
		structure, err = findActive(ctx, structureService, school, classID, section, academicYear)
		if err == nil {
			fmt.Printf("Found existing structure with ID: %d\n", structure.ID)
		}
	} else if err == nil {
		fmt.Printf("Created structure with ID: %d\n", structure.ID)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare fee structure")
	}

	ids := make([]int64, students)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	due := model.NewDate(clock().AddDate(0, 0, 30))
	period := due.Format("2006-01")
	result, err := structureService.Assign(ctx, school, structure.ID, model.AssignFeeStructureRequest{
		SchoolCode:    school.String(),
		StudentIDs:    ids,
		BillingPeriod: period,
		DueDate:       &due,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assign structure")
	}

	fmt.Printf("Billed %d students for %s (%d already billed)\n", len(result.Created), period, result.Skipped)
	fmt.Println("=== Seeding Complete ===")
}

func findActive(ctx context.Context, structures *service.FeeStructureService, school model.SchoolCode, classID int, section, academicYear string) (*model.FeeStructure, error) {
	list, err := structures.List(ctx, school, model.FeeStructureFilter{AcademicYear: academicYear, ClassID: &classID})
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Section == section && list[i].Component == "tuition" {
			return &list[i], nil
		}
	}
	return nil, service.ErrNotFound
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
