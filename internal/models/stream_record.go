package models

import "time"

// StreamRecord is one archived line
type StreamRecord struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:36;index:idx_stream_records_session_seq,priority:1;not null" json:"session_id"`
	Seq        int64     `gorm:"index:idx_stream_records_session_seq,priority:2;not null" json:"seq"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	ReceivedAt time.Time `gorm:"index;not null" json:"received_at"`
}

// TableName pins the table name across drivers
func (StreamRecord) TableName() string {
	return "stream_records"
}
