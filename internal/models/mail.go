package models

import (
	"regexp"
	"strings"
)

// mailPattern синтаксическая проверка адреса: local@domain[:port].
// Домен либо имя хоста с известным доменом верхнего уровня или любой
// двухбуквенной зоной, либо четыре группы по 1-3 цифры. Диапазон октетов
// не проверяется, 999.999.999.999 считается допустимым.
var mailPattern = regexp.MustCompile(
	`^[-a-z0-9~!$%^&*_=+}{'?]+(\.[-a-z0-9~!$%^&*_=+}{'?]+)*` +
		`@([a-z0-9_][-a-z0-9_]*(\.[-a-z0-9_]+)*` +
		`\.(aero|arpa|biz|com|coop|edu|gov|info|int|mil|museum|name|net|org|pro|travel|mobi|[a-z][a-z])` +
		`|([0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}))(:[0-9]{1,5})?$`,
)

// ValidMail проверяет формат адреса без учёта регистра.
func ValidMail(mail string) bool {
	return mailPattern.MatchString(strings.ToLower(mail))
}
