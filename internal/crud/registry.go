package crud

import (
	"fmt"
	"strings"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/models"
)

// Registry lists every table reachable through the admin CRUD routes.
// Billings are not here: they have typed handlers in the billing service.
var Registry = []Resource{
	{
		Name:      "users",
		Table:     "users",
		Columns:   []string{"id", "username", "email", "role", "gender", "birthdate", "region", "created_at"},
		Mutable:   []string{"username", "email", "password", "role", "gender", "birthdate", "region"},
		Prepare:   prepareUser,
		WriteRole: auth.RoleAdmin,
	},
	{
		Name:      "plans",
		Table:     "subscription_plans",
		Columns:   []string{"id", "name", "price", "max_devices", "hd", "ultra_hd", "duration_days"},
		Mutable:   []string{"name", "price", "max_devices", "hd", "ultra_hd", "duration_days"},
		Prepare:   preparePlan,
		WriteRole: auth.RoleAdmin,
	},
	{
		Name:      "subscriptions",
		Table:     "user_subscriptions",
		Columns:   []string{"id", "user_id", "plan_id", "start_date", "end_date"},
		Mutable:   []string{"user_id", "plan_id", "start_date", "end_date"},
		WriteRole: auth.RoleAdmin,
	},
	{
		Name:      "movies",
		Table:     "movies",
		Columns:   []string{"id", "title", "description", "release_year", "duration", "is_available", "poster", "tmdb_id", "imdb_id", "created_at"},
		Mutable:   []string{"title", "description", "release_year", "duration", "is_available", "poster", "tmdb_id", "imdb_id"},
		WriteRole: auth.RoleMod,
		Catalog:   true,
	},
	{
		Name:      "media",
		Table:     "media",
		Columns:   []string{"id", "movie_id", "season", "episode", "description", "file_path", "status"},
		Mutable:   []string{"movie_id", "season", "episode", "description", "file_path", "status"},
		WriteRole: auth.RoleMod,
		Catalog:   true,
	},
	{
		Name:      "genres",
		Table:     "genres",
		Columns:   []string{"id", "name"},
		Mutable:   []string{"name"},
		WriteRole: auth.RoleMod,
		Catalog:   true,
	},
	{
		Name:      "reviews",
		Table:     "reviews",
		Columns:   []string{"id", "user_id", "movie_id", "media_id", "rating", "comment", "created_at"},
		Mutable:   []string{"rating", "comment"},
		Prepare:   prepareReview,
		WriteRole: auth.RoleMod,
		Catalog:   true,
	},
	{
		Name:      "devices",
		Table:     "devices",
		Columns:   []string{"id", "user_id", "device_type", "device_name", "last_login"},
		Mutable:   []string{"device_type", "device_name"},
		WriteRole: auth.RoleAdmin,
	},
}

func init() {
	seen := map[string]bool{}
	for _, r := range Registry {
		if err := r.validate(); err != nil {
			panic(err)
		}
		if seen[r.Name] {
			panic(fmt.Sprintf("crud: duplicate resource %q", r.Name))
		}
		seen[r.Name] = true
	}
}

// Lookup finds a registered resource by route name.
func Lookup(name string) (Resource, bool) {
	for _, r := range Registry {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

func prepareUser(fields map[string]any) error {
	if raw, ok := fields["role"]; ok {
		s, _ := raw.(string)
		role, err := auth.ParseRole(s)
		if err != nil {
			return apperr.Validation("role must be USER, MOD or ADMIN")
		}
		fields["role"] = role.String()
	}
	if raw, ok := fields["password"]; ok {
		plain, _ := raw.(string)
		if len(plain) < 8 {
			return apperr.Validation("password must be at least 8 characters")
		}
		var p models.Password
		if err := p.Set(plain); err != nil {
			return apperr.Internal(err)
		}
		fields["password"] = p.Hash
	}
	if raw, ok := fields["email"]; ok {
		s, _ := raw.(string)
		if !strings.Contains(s, "@") {
			return apperr.Validation("email is invalid")
		}
	}
	return nil
}

func preparePlan(fields map[string]any) error {
	if v, ok := fields["price"]; ok {
		if n, isNum := v.(float64); !isNum || n < 0 {
			return apperr.Validation("price must be a non-negative number")
		}
	}
	if v, ok := fields["duration_days"]; ok {
		if n, isNum := v.(float64); !isNum || n < 1 || n != float64(int64(n)) {
			return apperr.Validation("duration_days must be a positive whole number")
		}
	}
	return nil
}

func prepareReview(fields map[string]any) error {
	if v, ok := fields["rating"]; ok {
		if n, isNum := v.(float64); !isNum || n < 1 || n > 5 {
			return apperr.Validation("rating must be between 1 and 5")
		}
	}
	return nil
}
