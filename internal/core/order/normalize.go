package order

import (
	"strings"
	"unicode"
)

// Separator 儲存 ingredients 欄位時使用的固定分隔字串
const Separator = ", "

// NormalizeItem 去除前後空白，將各種 Unicode 空白（含不換行空格）換成 ASCII 空格並合併連續空白
func NormalizeItem(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\u200b' || r == '\ufeff' {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalize 將選取清單轉為單一儲存字串，保留順序，略過空項目
func Normalize(items []string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if n := NormalizeItem(it); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, Separator)
}

// Split 以 Separator 將儲存字串拆回清單；名稱內單獨的逗號保留在該項目中
func Split(s string) []string {
	var items []string
	for _, part := range strings.Split(s, Separator) {
		if n := NormalizeItem(part); n != "" {
			items = append(items, n)
		}
	}
	return items
}
