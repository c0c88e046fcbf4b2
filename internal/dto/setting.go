package dto

// SettingItem is a setting as exposed over the API, including defaults
// for keys never written.
type SettingItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// UpdateSettingRequest sets the value of one allow-listed key.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}
