package favorite

import (
	"errors"
	"log"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/listing"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/fawaidy/fawaidy/internal/security"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewHandler(db *gorm.DB, sessions *session.Manager) *Handler {
	return &Handler{DB: db, Sessions: sessions}
}

// ListHandler returns the caller's favorited benefits. latest/oldest
// order by when the favorite was added.
func (h *Handler) ListHandler(c *fiber.Ctx) error {
	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	p := listing.Parse(c, listing.SortLatest, listing.SortPopular, listing.SortOldest)

	result, err := listing.Favorites(h.DB, ident.UserID, p)
	if err != nil {
		log.Printf("❌ favorites list for user %d failed: %v", ident.UserID, err)
		return response.InternalError(c)
	}

	meta := response.CalculateMeta(p.Page, config.ItemsPerPage, result.Total)
	meta.Search = p.Search
	meta.Sort = p.Sort

	return response.SuccessWithMeta(c, result.Rows, meta, "")
}

// ToggleHandler adds or removes a favorite for a published benefit and
// reports the resulting state.
func (h *Handler) ToggleHandler(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return response.InternalError(c)
	}
	if !security.VerifyCSRF(sess, c) {
		return response.Forbidden(c, "انتهت صلاحية الجلسة. يرجى إعادة المحاولة")
	}

	ident := session.CurrentIdentity(c)
	if ident == nil {
		return response.Unauthorized(c, "يجب تسجيل الدخول أولاً")
	}

	benefitID, err := c.ParamsInt("id")
	if err != nil || benefitID < 1 {
		return response.NotFound(c, "الفائدة غير موجودة")
	}

	var count int64
	h.DB.Model(&models.Benefit{}).
		Where("id = ? AND status = ?", benefitID, models.StatusPublished).
		Count(&count)
	if count == 0 {
		return response.NotFound(c, "الفائدة غير موجودة")
	}

	var fav models.Favorite
	err = h.DB.Where("user_id = ? AND benefit_id = ?", ident.UserID, benefitID).
		First(&fav).Error
	switch {
	case err == nil:
		if err := h.DB.Delete(&fav).Error; err != nil {
			log.Printf("❌ favorite delete failed: %v", err)
			return response.InternalError(c)
		}
		return response.Success(c, fiber.Map{"favorited": false},
			"تمت إزالة الفائدة من المفضلة")

	case errors.Is(err, gorm.ErrRecordNotFound):
		fav = models.Favorite{UserID: ident.UserID, BenefitID: uint(benefitID)}
		if err := h.DB.Create(&fav).Error; err != nil {
			log.Printf("❌ favorite insert failed: %v", err)
			return response.InternalError(c)
		}
		return response.Success(c, fiber.Map{"favorited": true},
			"تمت إضافة الفائدة إلى المفضلة")

	default:
		log.Printf("❌ favorite lookup failed: %v", err)
		return response.InternalError(c)
	}
}
