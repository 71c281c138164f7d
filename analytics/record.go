// Package analytics 消费统计、趋势预测与日历热力图计算。
//
// 包内函数均为纯函数：只读取调用方传入的单个用户的记录，不做任何 I/O，
// 相同输入总是得到相同输出。
package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Category 消费类别
type Category string

// 消费类别常量（固定枚举）
const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryBills         Category = "Bills"
	CategoryOthers        Category = "Others"
)

var categoryOrder = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryBills,
	CategoryOthers,
}

// Categories 获取所有消费类别（按固定顺序）
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid 是否为合法类别
func (c Category) Valid() bool {
	return categoryIndex(c) >= 0
}

// ParseCategory 解析类别名称，忽略大小写和首尾空格
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categoryOrder {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", invalidArgument("unknown category %q", s)
}

func categoryIndex(c Category) int {
	for i, v := range categoryOrder {
		if v == c {
			return i
		}
	}
	return -1
}

// Record 单条消费记录（引擎只读输入）
// Date 只使用年月日，时刻部分被忽略。
type Record struct {
	ID       string
	UserID   uint
	Amount   float64
	Category Category
	Date     time.Time
}

// monthKey 年月组合，用于按 (year, month) 分桶
type monthKey struct {
	year  int
	month int
}

func keyOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: int(t.Month())}
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

func (k monthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.year, k.month)
}

// nextMonth 返回下一个自然月，12 月之后跨年到次年 1 月
func nextMonth(year, month int) (int, int) {
	if month >= 12 {
		return year + 1, 1
	}
	return year, month + 1
}
