// Package validator 电话号码、IIN 的校验与规范化
package validator

import (
	"regexp"
	"strings"
)

var (
	nonDigit = regexp.MustCompile(`\D`)
	phoneRe  = regexp.MustCompile(`^[78]?\d{10}$`)
	iinRe    = regexp.MustCompile(`^\d{12}$`)
)

// 号码在 CRM 中出现过的三种写法
var phonePrefixes = []string{"7", "8", "+7"}

// DigitsOnly 去掉所有非数字字符
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// IsValidPhone 去掉非数字后，可选的 7/8 前缀加 10 位数字
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(DigitsOnly(phone))
}

// IsValidIIN 恰好 12 位数字
func IsValidIIN(iin string) bool {
	return iinRe.MatchString(iin)
}

// FormatPhoneVariants 取最后 10 位数字，生成搜索用的三种写法
func FormatPhoneVariants(phone string) []string {
	number := DigitsOnly(phone)
	if len(number) > 10 {
		number = number[len(number)-10:]
	}

	variants := make([]string, 0, len(phonePrefixes))
	for _, prefix := range phonePrefixes {
		variants = append(variants, prefix+number)
	}
	return variants
}

// FullName 姓、名、父称
type FullName struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
}

// SplitFullName 按空白拆分 "姓 名 父称"，缺失的部分为空
func SplitFullName(fullName string) FullName {
	parts := strings.Fields(fullName)
	var name FullName
	if len(parts) > 0 {
		name.LastName = parts[0]
	}
	if len(parts) > 1 {
		name.FirstName = parts[1]
	}
	if len(parts) > 2 {
		name.MiddleName = parts[2]
	}
	return name
}

// CombineFullName 合并为 "姓 名 父称"
func CombineFullName(lastName, firstName, middleName string) string {
	return strings.TrimSpace(strings.Join([]string{lastName, firstName, middleName}, " "))
}

// String 返回合并后的全名
func (n FullName) String() string {
	return CombineFullName(n.LastName, n.FirstName, n.MiddleName)
}
