package models

import "spendlens/analytics"

// CategoryInfo 消费类别及展示颜色
type CategoryInfo struct {
	Name  analytics.Category `json:"name"`
	Sort  int                `json:"sort"`
	Color string             `json:"color"` // 颜色代码，如 #ef4444
}

var categoryColors = map[analytics.Category]string{
	analytics.CategoryFood:          "#ef4444",
	analytics.CategoryTransport:     "#3b82f6",
	analytics.CategoryShopping:      "#a855f7",
	analytics.CategoryEntertainment: "#ec4899",
	analytics.CategoryHealthcare:    "#10b981",
	analytics.CategoryBills:         "#f59e0b",
	analytics.CategoryOthers:        "#64748b",
}

// CategoryColor 类别颜色，未知类别使用灰色
func CategoryColor(c analytics.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return "#64748b"
}

// GetCategories 获取所有消费类别
func GetCategories() []CategoryInfo {
	cats := analytics.Categories()
	out := make([]CategoryInfo, len(cats))
	for i, c := range cats {
		out[i] = CategoryInfo{Name: c, Sort: i, Color: CategoryColor(c)}
	}
	return out
}
