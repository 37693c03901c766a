package benefit

import (
	"log"
	"strings"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/listing"
	"github.com/fawaidy/fawaidy/internal/models"
	"github.com/fawaidy/fawaidy/internal/response"
	"github.com/fawaidy/fawaidy/internal/security"
	"github.com/fawaidy/fawaidy/internal/session"
	"github.com/fawaidy/fawaidy/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var contentPolicy = bluemonday.UGCPolicy()

type Handler struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewHandler(db *gorm.DB, sessions *session.Manager) *Handler {
	return &Handler{DB: db, Sessions: sessions}
}

func (h *Handler) ListHandler(c *fiber.Ctx) error {
	p := listing.Parse(c, listing.SortLatest, listing.SortPopular, listing.SortTrending)
	p.CategoryID = listing.ValidateCategory(h.DB, p.CategoryID)

	result, err := listing.Content(h.DB, "benefits", p)
	if err != nil {
		log.Printf("❌ benefits list failed: %v", err)
		return response.InternalError(c)
	}

	meta := response.CalculateMeta(p.Page, config.ItemsPerPage, result.Total)
	meta.Search = p.Search
	meta.Category = p.CategoryID
	meta.Sort = p.Sort

	return response.SuccessWithMeta(c, result.Rows, meta, "")
}

// DetailHandler returns one published benefit and bumps its view
// counter. The bump is a single relative UPDATE, concurrent reads never
// lose counts.
func (h *Handler) DetailHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "الفائدة غير موجودة")
	}

	var b models.Benefit
	err = h.DB.Preload("User").Preload("Category").
		Where("id = ? AND status = ?", id, models.StatusPublished).
		First(&b).Error
	if err != nil {
		return response.NotFound(c, "الفائدة غير موجودة")
	}

	h.DB.Model(&b).UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	b.ViewsCount++

	return response.Success(c, b, "")
}

func (h *Handler) CreateHandler(c *fiber.Ctx) error {
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

	var body struct {
		Title      string `json:"title" form:"title"`
		Content    string `json:"content" form:"content"`
		CategoryID uint   `json:"category_id" form:"category_id"`
		Tags       string `json:"tags" form:"tags"`
		Status     string `json:"status" form:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "طلب غير صالح", err.Error())
	}

	errs := validation.Errors{}
	title := strings.TrimSpace(body.Title)
	content := strings.TrimSpace(contentPolicy.Sanitize(body.Content))
	switch {
	case title == "":
		errs["title"] = "العنوان مطلوب"
	case len([]rune(title)) < 5 || len([]rune(title)) > 200:
		errs["title"] = "العنوان يجب أن يكون بين 5 و 200 حرف"
	}
	if len([]rune(content)) < 20 {
		errs["content"] = "المحتوى يجب أن يكون 20 حرفاً على الأقل"
	}
	if listing.ValidateCategory(h.DB, body.CategoryID) == 0 {
		errs["category_id"] = "يرجى اختيار تصنيف صحيح"
	}
	status := body.Status
	if status == "" {
		status = models.StatusPublished
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		errs["status"] = "حالة النشر غير صحيحة"
	}
	if len(errs) > 0 {
		return response.ValidationError(c, errs)
	}

	b := models.Benefit{
		UserID:     ident.UserID,
		CategoryID: body.CategoryID,
		Title:      title,
		Content:    content,
		Tags:       normalizeTags(body.Tags),
		Status:     status,
	}
	if err := h.DB.Create(&b).Error; err != nil {
		log.Printf("❌ benefit insert failed: %v", err)
		return response.InternalError(c)
	}

	return response.Created(c, b, "تمت إضافة الفائدة بنجاح")
}

// normalizeTags trims each comma-separated tag and drops empties.
func normalizeTags(raw string) string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	joined := strings.Join(tags, ",")
	if len(joined) > 255 {
		joined = joined[:255]
	}
	return joined
}
