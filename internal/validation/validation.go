package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fawaidy/fawaidy/internal/config"
	"github.com/fawaidy/fawaidy/internal/models"
	"gorm.io/gorm"
)

// Errors maps a form field name to its localized message.
type Errors map[string]string

var (
	arabicOnly      = regexp.MustCompile(`^[\x{0600}-\x{06FF}\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]{2,29}$`)
	passwordSymbols = "!@#$%^&*()_+-=[]{};:'\",.<>?/\\|`~"
)

type RegistrationInput struct {
	FullName        string
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Gender          string
	Country         string
}

// ValidateRegistration checks fields in the fixed order fullname,
// username, email, password, confirmation, gender, country and stops at
// the first failing field, mirroring how the registration form reports.
func ValidateRegistration(db *gorm.DB, in RegistrationInput) Errors {
	errs := Errors{}

	if msg := FullName(db, in.FullName); msg != "" {
		errs["fullname"] = msg
		return errs
	}
	if msg := Username(db, in.Username); msg != "" {
		errs["username"] = msg
		return errs
	}
	if msg := Email(db, in.Email); msg != "" {
		errs["email"] = msg
		return errs
	}
	if msg := Password(in.Password); msg != "" {
		errs["password"] = msg
		return errs
	}
	if msg := PasswordMatch(in.Password, in.PasswordConfirm); msg != "" {
		errs["password_confirm"] = msg
		return errs
	}
	if msg := Gender(in.Gender); msg != "" {
		errs["gender"] = msg
		return errs
	}
	if msg := Country(in.Country); msg != "" {
		errs["country"] = msg
		return errs
	}

	return errs
}

// FullName requires Arabic letters only and a name not already taken.
func FullName(db *gorm.DB, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "الاسم الكامل مطلوب"
	}
	if !arabicOnly.MatchString(name) {
		return "الاسم الكامل يجب أن يحتوي على أحرف عربية فقط"
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return "الاسم يجب أن يكون بين 3 و 100 حرف"
	}

	var count int64
	db.Model(&models.User{}).Where("full_name = ?", name).Count(&count)
	if count > 0 {
		return "هذا الاسم مستخدم بالفعل"
	}
	return ""
}

func Username(db *gorm.DB, username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "اسم المستخدم مطلوب"
	}
	if !usernamePattern.MatchString(username) {
		return "اسم المستخدم غير صحيح. يجب أن يبدأ بحرف ويتضمن أحرف وأرقام و .- فقط"
	}

	var count int64
	db.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count)
	if count > 0 {
		return "اسم المستخدم موجود بالفعل"
	}
	return ""
}

func Email(db *gorm.DB, email string) string {
	email = strings.TrimSpace(email)
	if msg := EmailFormat(email); msg != "" {
		return msg
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return "هذا البريد الإلكتروني مسجل بالفعل"
	}
	return ""
}

func EmailFormat(email string) string {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "البريد الإلكتروني غير صحيح"
	}
	return ""
}

// Password enforces the policy: 8+ characters with at least one upper
// case letter, one digit and one symbol, and no Arabic or whitespace.
func Password(password string) string {
	if len(password) < config.PasswordMinLength {
		return "كلمة المرور يجب أن تكون 8 أحرف على الأقل"
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return "كلمة المرور يجب أن تحتوي على حرف كبير على الأقل"
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return "كلمة المرور يجب أن تحتوي على رقم على الأقل"
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return "كلمة المرور يجب أن تحتوي على رمز خاص واحد على الأقل"
	}
	for _, r := range password {
		if (r >= 0x0600 && r <= 0x06FF) || unicode.IsSpace(r) {
			return "كلمة المرور لا يجب أن تحتوي على أحرف عربية أو مساحات"
		}
	}
	return ""
}

func PasswordMatch(password, confirm string) string {
	if password != confirm {
		return "كلمات المرور غير متطابقة"
	}
	return ""
}

func Gender(gender string) string {
	switch gender {
	case "unspecified", "male", "female":
		return ""
	}
	return "الجنس غير صحيح"
}

// Country is optional everywhere it appears; only a non-empty value is
// checked for Arabic letters.
func Country(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return ""
	}
	if !arabicOnly.MatchString(country) {
		return "البلد يجب أن يكون بالعربية فقط"
	}
	return ""
}
