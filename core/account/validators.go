package account

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to account attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"

	commonPasswords     []string
	commonPasswordsOnce sync.Once
)

// InitValidators registers the account validations and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	validate.RegisterStructValidation(accountStructValidation, NewAccount{}, SetPassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(validate, translator, pwdNoCommonTag, pwdNoCommonText)
}

func loadCommonPasswords() {
	commonPasswordsOnce.Do(func() {
		file, err := appfs.FS.Open("common-passwords.txt")
		if err != nil {
			return
		}
		//goland:noinspection GoUnhandledErrorResult
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
				commonPasswords = append(commonPasswords, strings.ToLower(pwd))
			}
		}
		sort.Strings(commonPasswords)
	})
}

// Custom Validators

// allRolesValidation checks that provided account roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		if RolePriority(role) == 0 {
			return false
		}
	}
	return true
}

// accountStructValidation does struct level validation on NewAccount and SetPassword structs.
func accountStructValidation(sl validator.StructLevel) {
	switch v := sl.Current().Interface().(type) {
	case NewAccount:
		validatePassword(v.Password, v.Name, v.Email, sl)
	case SetPassword:
		validatePassword(v.Password, v.acc.Name, v.acc.Email, sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no account attrs similarity
// - no common password
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	if pwd == "" {
		return // reported by `required`
	}
	if tag := passwordPolicyViolation(pwd, name, email); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// passwordPolicyViolation returns the tag of the first rule `pwd` breaks, or "".
func passwordPolicyViolation(pwd, name, email string) string {
	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		return pwdNotAllNumTag
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		return pwdComplexityTag
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		pass, attr = strings.ToLower(pass), strings.ToLower(attr)
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	localPart := strings.SplitN(email, "@", 2)[0]
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim || getRatio(pwd, localPart) >= pwdMaxSim {
		return pwdAttrSimTag
	}

	loadCommonPasswords()
	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) && commonPasswords[idx] == lpwd {
		return pwdNoCommonTag
	}
	return ""
}
