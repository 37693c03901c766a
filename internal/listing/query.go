package listing

import (
	"strings"
	"time"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Sort keys. Each page passes its own allow-list; anything else falls
// back to latest. trending never grew its own ordering and resolves to
// the latest ordering.
const (
	SortLatest   = "latest"
	SortPopular  = "popular"
	SortTrending = "trending"
	SortOldest   = "oldest"
)

var searchPolicy = bluemonday.StrictPolicy()

// Params are the four untrusted query-string inputs shared by every
// list page, already normalized.
type Params struct {
	Page       int    `json:"page"`
	Search     string `json:"search"`
	CategoryID uint   `json:"category"`
	Sort       string `json:"sort"`
}

// Parse reads page/q/category/sort from the query string. The search
// term is trimmed and HTML-stripped before it is used anywhere, so the
// value in Params is safe both as a LIKE parameter and for redisplay.
func Parse(c *fiber.Ctx, allowedSorts ...string) Params {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	search := strings.TrimSpace(c.Query("q"))
	if search != "" {
		search = searchPolicy.Sanitize(search)
	}

	category := c.QueryInt("category", 0)
	if category < 0 {
		category = 0
	}

	sort := strings.TrimSpace(c.Query("sort"))
	valid := false
	for _, s := range allowedSorts {
		if sort == s {
			valid = true
			break
		}
	}
	if !valid {
		sort = SortLatest
	}

	return Params{
		Page:       page,
		Search:     search,
		CategoryID: uint(category),
		Sort:       sort,
	}
}

// ValidateCategory trusts a nonzero category id only when it names an
// active category; anything else degrades to "no filter".
func ValidateCategory(db *gorm.DB, id uint) uint {
	if id == 0 {
		return 0
	}
	var count int64
	db.Model(&models.Category{}).Where("id = ? AND is_active = ?", id, true).Count(&count)
	if count == 0 {
		return 0
	}
	return id
}

// Row is one list entry joined with its author and category display
// fields. FavoriteDate is set only on the favorites page.
type Row struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	CategoryID   uint       `json:"category_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Tags         string     `json:"tags"`
	ViewsCount   int64      `json:"views_count"`
	CreatedAt    time.Time  `json:"created_at"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	Avatar       string     `json:"avatar"`
	CategoryName string     `json:"category_name"`
	FavoriteDate *time.Time `json:"favorite_date,omitempty"`
}

type Result struct {
	Rows       []Row
	Total      int64
	TotalPages int64
	Params     Params
}

// contentFilter builds the predicate set shared by the count and data
// queries. Both queries MUST come from this one function: the displayed
// total and the page contents diverge otherwise.
func contentFilter(db *gorm.DB, table string, p Params) *gorm.DB {
	q := db.Table(table).
		Where(table+".status = ? AND "+table+".deleted_at IS NULL", models.StatusPublished)

	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		q = q.Where("("+table+".title LIKE ? OR "+table+".content LIKE ?)", pattern, pattern)
	}

	if p.CategoryID > 0 {
		q = q.Where(table+".category_id = ?", p.CategoryID)
	}

	return q
}

// Content runs the shared list query over "benefits" or "articles".
func Content(db *gorm.DB, table string, p Params) (*Result, error) {
	var total int64
	if err := contentFilter(db, table, p).Count(&total).Error; err != nil {
		return nil, err
	}

	q := contentFilter(db, table, p).
		Select(table + ".id, " + table + ".user_id, " + table + ".category_id, " +
			table + ".title, " + table + ".content, " + table + ".tags, " +
			table + ".views_count, " + table + ".created_at, " +
			"users.username, users.full_name, users.avatar, categories.name AS category_name").
		Joins("JOIN users ON " + table + ".user_id = users.id").
		Joins("JOIN categories ON " + table + ".category_id = categories.id")

	switch p.Sort {
	case SortPopular:
		q = q.Order(table + ".views_count DESC")
	case SortOldest:
		q = q.Order(table + ".created_at ASC")
	default:
		q = q.Order(table + ".created_at DESC")
	}

	var rows []Row
	err := q.Limit(config.ItemsPerPage).
		Offset((p.Page - 1) * config.ItemsPerPage).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:       rows,
		Total:      total,
		TotalPages: totalPages(total),
		Params:     p,
	}, nil
}

// favoriteFilter is the favorites variant: the user's favorites joined
// to still-published benefits.
func favoriteFilter(db *gorm.DB, userID uint, p Params) *gorm.DB {
	q := db.Table("favorites").
		Joins("JOIN benefits ON favorites.benefit_id = benefits.id").
		Where("favorites.user_id = ? AND benefits.status = ? AND benefits.deleted_at IS NULL",
			userID, models.StatusPublished)

	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		q = q.Where("(benefits.title LIKE ? OR benefits.content LIKE ?)", pattern, pattern)
	}

	return q
}

// Favorites lists the user's favorited benefits. latest/oldest order by
// when the favorite was added, not when the benefit was written.
func Favorites(db *gorm.DB, userID uint, p Params) (*Result, error) {
	var total int64
	if err := favoriteFilter(db, userID, p).Count(&total).Error; err != nil {
		return nil, err
	}

	q := favoriteFilter(db, userID, p).
		Select("benefits.id, benefits.user_id, benefits.category_id, benefits.title, " +
			"benefits.content, benefits.tags, benefits.views_count, benefits.created_at, " +
			"users.username, users.full_name, users.avatar, categories.name AS category_name, " +
			"favorites.created_at AS favorite_date").
		Joins("JOIN users ON benefits.user_id = users.id").
		Joins("JOIN categories ON benefits.category_id = categories.id")

	switch p.Sort {
	case SortPopular:
		q = q.Order("benefits.views_count DESC")
	case SortOldest:
		q = q.Order("favorites.created_at ASC")
	default:
		q = q.Order("favorites.created_at DESC")
	}

	var rows []Row
	err := q.Limit(config.ItemsPerPage).
		Offset((p.Page - 1) * config.ItemsPerPage).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &Result{
		Rows:       rows,
		Total:      total,
		TotalPages: totalPages(total),
		Params:     p,
	}, nil
}

func totalPages(total int64) int64 {
	pages := total / config.ItemsPerPage
	if total%config.ItemsPerPage > 0 {
		pages++
	}
	return pages
}
