package model

// CartItem is a selected record with the denormalized fields shown in the
// cross-category cart table.
type CartItem struct {
	Key       string   `json:"key"`
	ItemID    string   `json:"itemId"`
	Title     string   `json:"title"`
	Source    Category `json:"source"`
	Bolla     string   `json:"bolla,omitempty"`
	Colata    string   `json:"colata,omitempty"`
	LottoProg string   `json:"lottoProg,omitempty"`
	Fields    Fields   `json:"fields"`
}

// CartKey builds the cart identity of a record.
func CartKey(source Category, itemID string) string {
	return string(source) + ":" + itemID
}

// User is the signed-in kiosk operator.
type User struct {
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName,omitempty"`
	Roles       []string `json:"roles"`
}

// SaveStatus is the state of one batch save.
type SaveStatus string

const (
	StatusIdle    SaveStatus = "idle"
	StatusSaving  SaveStatus = "saving"
	StatusSuccess SaveStatus = "success"
	StatusError   SaveStatus = "error"
)

// SaveRecord is a persisted save outcome.
type SaveRecord struct {
	ID            int64  `db:"id" json:"id"`
	RunID         string `db:"run_id" json:"runId"`
	Username      string `db:"username" json:"username"`
	Status        string `db:"status" json:"status"`
	Message       string `db:"message" json:"message"`
	ItemCount     int    `db:"item_count" json:"itemCount"`
	MirrorWarning string `db:"mirror_warning" json:"mirrorWarning,omitempty"`
	NotifyWarning string `db:"notify_warning" json:"notifyWarning,omitempty"`
	CreatedAt     string `db:"created_at" json:"createdAt"`
}
