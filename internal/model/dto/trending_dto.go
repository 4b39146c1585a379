package dto

// RecordViewRequest 记录一次浏览
type RecordViewRequest struct {
	EntityType string `json:"entity_type" binding:"required,max=100"`
	EntityID   uint64 `json:"entity_id" binding:"required"`
	Kind       string `json:"kind" binding:"max=50"`
}

// RecordViewResponse Recorded 为 false 表示该会话已浏览过
type RecordViewResponse struct {
	Recorded   bool   `json:"recorded"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	Kind       string `json:"kind"`
}

// ViewedResponse 当前会话是否浏览过该实体
type ViewedResponse struct {
	Viewed     bool   `json:"viewed"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
}

// TrendingItem 热门榜单中的一行
type TrendingItem struct {
	EntityType string      `json:"entity_type"`
	EntityID   uint64      `json:"entity_id"`
	Kind       string      `json:"kind"`
	NumViews   int64       `json:"num_views"`
	Object     interface{} `json:"object"` // 实体已删除时为 null
}

// TrendingResponse 热门查询结果
type TrendingResponse struct {
	EntityType string          `json:"entity_type"`
	Days       int             `json:"days"`
	Kind       string          `json:"kind"`
	Items      []*TrendingItem `json:"items"`
}

// SummarizeRequest 手动触发汇总，entity_type/entity_id 同时给出时只汇总该实体
type SummarizeRequest struct {
	Date       string `json:"date" binding:"required"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
}

// SummarizeResponse 汇总结果
type SummarizeResponse struct {
	Date    string `json:"date"`
	Groups  int    `json:"groups"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// SummaryItem 某天的一条汇总
type SummaryItem struct {
	ViewsOn    string `json:"views_on"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	Kind       string `json:"kind"`
	Count      uint64 `json:"count"`
}
