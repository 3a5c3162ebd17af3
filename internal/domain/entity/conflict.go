// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictOpposingThemes ConflictType = "opposing_themes"
	ConflictIntensityClash ConflictType = "intensity_clash"
)

// ConflictSeverity 冲突严重程度
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// SeverityForIntensity 按合并强度划分严重程度
func SeverityForIntensity(combined float64) ConflictSeverity {
	switch {
	case combined >= 16:
		return SeverityHigh
	case combined >= 12:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ConflictStatus 冲突记录状态
type ConflictStatus string

const (
	ConflictActive   ConflictStatus = "active"
	ConflictResolved ConflictStatus = "resolved"
	ConflictIgnored  ConflictStatus = "ignored"
)

// MotifConflict 两个主题之间的叙事张力记录。
// 冲突是叙事特性而非故障，永远不作为错误对外抛出。
type MotifConflict struct {
	ID       string `json:"id" gorm:"primaryKey"`
	MotifAID string `json:"motif_a_id" gorm:"index"`
	MotifBID string `json:"motif_b_id" gorm:"index"`
	// PairKey 无序对的规范化键，保证同一对主题至多一条活跃记录
	PairKey string `json:"-" gorm:"uniqueIndex:idx_conflict_pair_active,where:status = 'active'"`

	Type            ConflictType     `json:"type"`
	Severity        ConflictSeverity `json:"severity"`
	OverlapFraction float64          `json:"overlap_fraction"`
	Status          ConflictStatus   `json:"status" gorm:"index"`
	Description     string           `json:"description,omitempty"`

	DetectedAt time.Time  `json:"detected_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName GORM 表名
func (MotifConflict) TableName() string {
	return "motif_conflicts"
}

// ConflictPairKey 无序主题对的规范化键
func ConflictPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// NewMotifConflict 创建冲突记录
func NewMotifConflict(motifA, motifB *Motif, ctype ConflictType, overlap float64) *MotifConflict {
	now := time.Now().UTC()
	return &MotifConflict{
		ID:              uuid.New().String(),
		MotifAID:        motifA.ID,
		MotifBID:        motifB.ID,
		PairKey:         ConflictPairKey(motifA.ID, motifB.ID),
		Type:            ctype,
		Severity:        SeverityForIntensity(motifA.Intensity + motifB.Intensity),
		OverlapFraction: overlap,
		Status:          ConflictActive,
		DetectedAt:      now,
		UpdatedAt:       now,
	}
}

// Refresh 用重新检测到的数据更新既有记录
func (c *MotifConflict) Refresh(combined, overlap float64) {
	c.Severity = SeverityForIntensity(combined)
	c.OverlapFraction = overlap
	c.UpdatedAt = time.Now().UTC()
}

// Resolve 标记冲突为已解决
func (c *MotifConflict) Resolve() {
	now := time.Now().UTC()
	c.Status = ConflictResolved
	c.ResolvedAt = &now
	c.UpdatedAt = now
}

// Ignore 标记冲突为已忽略，保留为叙事张力
func (c *MotifConflict) Ignore() {
	c.Status = ConflictIgnored
	c.UpdatedAt = time.Now().UTC()
}
