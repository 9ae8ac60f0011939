package db

import "gorm.io/gorm"

// Comment 定义了访客评论模型。Active 为 false 时评论从公共页面隐藏。
type Comment struct {
	gorm.Model
	Name   string `gorm:"size:80;not null"`
	Email  string `gorm:"size:254;not null"`
	Body   string `gorm:"type:text;not null"`
	Active bool   `gorm:"not null;default:true"`
	PostID uint   `gorm:"index;not null"`
}
