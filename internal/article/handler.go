package article

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

// Articles are the long-form counterpart of benefits and sit behind
// the premium tier; the route group applies the role gate.
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

	result, err := listing.Content(h.DB, "articles", p)
	if err != nil {
		log.Printf("❌ articles list failed: %v", err)
		return response.InternalError(c)
	}

	meta := response.CalculateMeta(p.Page, config.ItemsPerPage, result.Total)
	meta.Search = p.Search
	meta.Category = p.CategoryID
	meta.Sort = p.Sort

	return response.SuccessWithMeta(c, result.Rows, meta, "")
}

func (h *Handler) DetailHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.NotFound(c, "المقال غير موجود")
	}

	var a models.Article
	err = h.DB.Preload("User").Preload("Category").
		Where("id = ? AND status = ?", id, models.StatusPublished).
		First(&a).Error
	if err != nil {
		return response.NotFound(c, "المقال غير موجود")
	}

	h.DB.Model(&a).UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	a.ViewsCount++

	return response.Success(c, a, "")
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
	if len([]rune(content)) < 100 {
		errs["content"] = "محتوى المقال يجب أن يكون 100 حرف على الأقل"
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

	a := models.Article{
		UserID:     ident.UserID,
		CategoryID: body.CategoryID,
		Title:      title,
		Content:    content,
		Tags:       strings.TrimSpace(body.Tags),
		Status:     status,
	}
	if err := h.DB.Create(&a).Error; err != nil {
		log.Printf("❌ article insert failed: %v", err)
		return response.InternalError(c)
	}

	return response.Created(c, a, "تمت إضافة المقال بنجاح")
}
