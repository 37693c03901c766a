package category

import (
	"log"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/listing"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

type categoryRow struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	BenefitsCount int64  `json:"benefits_count"`
}

// ListHandler returns the active categories with their published
// benefit counts.
func (h *Handler) ListHandler(c *fiber.Ctx) error {
	q := h.DB.Table("categories").
		Select("categories.id, categories.name, categories.description, " +
			"COUNT(benefits.id) AS benefits_count").
		Joins("LEFT JOIN benefits ON benefits.category_id = categories.id "+
			"AND benefits.status = ? AND benefits.deleted_at IS NULL", models.StatusPublished).
		Where("categories.is_active = ?", true).
		Group("categories.id, categories.name, categories.description")

	sort := c.Query("sort")
	if sort == listing.SortPopular {
		q = q.Order("benefits_count DESC")
	} else {
		q = q.Order("categories.id DESC")
	}

	var rows []categoryRow
	if err := q.Scan(&rows).Error; err != nil {
		log.Printf("❌ categories list failed: %v", err)
		return response.InternalError(c)
	}

	return response.Success(c, rows, "")
}

// ShowHandler lists the published benefits of one active category. An
// unknown or disabled category is a 404, not an empty list.
func (h *Handler) ShowHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "التصنيف غير موجود")
	}

	var cat models.Category
	err = h.DB.Where("id = ? AND is_active = ?", id, true).First(&cat).Error
	if err != nil {
		return response.NotFound(c, "التصنيف غير موجود")
	}

	p := listing.Parse(c, listing.SortLatest, listing.SortPopular)
	p.CategoryID = cat.ID

	result, err := listing.Content(h.DB, "benefits", p)
	if err != nil {
		log.Printf("❌ category %d benefits failed: %v", cat.ID, err)
		return response.InternalError(c)
	}

	meta := response.CalculateMeta(p.Page, config.ItemsPerPage, result.Total)
	meta.Search = p.Search
	meta.Category = cat.ID
	meta.Sort = p.Sort

	return response.SuccessWithMeta(c, fiber.Map{
		"category": cat,
		"benefits": result.Rows,
	}, meta, "")
}
