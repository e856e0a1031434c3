package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/uniraum/room-booking/internal/repository"
)

type seedRoom struct {
	name, building string
	floor          int
	capacity       int
	typ            string
	computers      bool
	projector      bool
	description    string
}

var seedRooms = []seedRoom{
	{"Lecture Hall A101", "Main Campus", 1, 120, "lecture", false, true, "Large lecture hall with stadium seating and acoustic design"},
	{"Seminar Room B202", "Main Campus", 2, 40, "lecture", false, true, "Medium-sized seminar room with modular tables"},
	{"Computer Lab C103", "Tech Building", 1, 30, "lab", true, true, "Computer lab with high-performance workstations for programming courses"},
	{"Electronics Lab D105", "Engineering Building", 1, 24, "lab", true, true, "Specialized lab for electronics experiments with test equipment"},
	{"Physics Lab P201", "Science Building", 2, 28, "lab", true, true, "Physics laboratory with experiment stations and safety equipment"},
	{"Conference Room E301", "Administration Building", 3, 20, "meeting", true, true, "Conference room with video conferencing equipment and whiteboard wall"},
	{"Workshop F102", "Technical Arts Building", 1, 25, "lab", false, true, "Technical workshop with tools and equipment for practical projects"},
	{"Study Space G201", "Library Building", 2, 30, "meeting", false, false, "Quiet study area with individual desks and good lighting"},
	{"Media Room H104", "Media Center", 1, 15, "lab", true, true, "Media production room with audio/video editing workstations"},
	{"Language Lab L205", "Humanities Building", 2, 24, "lab", true, true, "Language learning lab with audio equipment and language software"},
	{"Design Studio D301", "Arts Building", 3, 22, "lab", true, true, "Creative design studio with drawing tables and design software"},
	{"Chemistry Lab C201", "Science Building", 2, 24, "lab", true, true, "Chemistry laboratory with fume hoods and safety stations"},
}

// SeedInitialData creates one account per role and a set of sample
// rooms, but only when the users table is still empty.  It is meant for
// development and demo environments and runs once at startup when
// SEED_DATA is set.
func SeedInitialData(ctx context.Context, users *repository.UserRepo, rooms *repository.RoomRepo, emailDomain string, bcryptCost int, logger *zap.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count users: %w", err)
	}
	if n > 0 {
		logger.Debug("seed skipped, users already present", zap.Int("users", n))
		return nil
	}
	logger.Info("seeding initial users and rooms")

	for _, u := range []struct{ name, password, role string }{
		{"admin", "admin123", "admin"},
		{"teacher", "teacher123", "teacher"},
		{"student", "student123", "student"},
	} {
		email := u.name + "@" + emailDomain
		if _, err := users.Create(ctx, u.name, email, u.password, u.role, bcryptCost); err != nil {
			return fmt.Errorf("seed: create user %s: %w", u.name, err)
		}
	}

	for _, r := range seedRooms {
		room := &repository.Room{
			Name:         r.name,
			Building:     r.building,
			Floor:        r.floor,
			Capacity:     r.capacity,
			Type:         r.typ,
			HasComputers: r.computers,
			HasProjector: r.projector,
			Description:  sql.NullString{String: r.description, Valid: true},
		}
		if err := rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("seed: create room %s: %w", r.name, err)
		}
	}

	logger.Info("seed complete", zap.Int("users", 3), zap.Int("rooms", len(seedRooms)))
	return nil
}
