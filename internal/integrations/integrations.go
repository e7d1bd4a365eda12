package integrations

import "encoding/json"

// Integration is a stored credential and account binding between one user
// and one external social provider. Rows are created and rotated by the
// OAuth connect flow; this service only ever reads them.
type Integration struct {
	ID          string
	UserID      string
	Provider    string
	AccessToken string
	AccountID   string
	AccountData map[string]interface{}
	IsActive    bool
}

// InstagramBusinessAccountID extracts the linked business account id from
// the provider-specific account data blob. Returns "" when the account is
// not linked to a business profile.
func (i Integration) InstagramBusinessAccountID() string {
	raw, ok := i.AccountData["instagram_business_account"]
	if !ok {
		return ""
	}
	nested, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := nested["id"].(string)
	return id
}

func decodeAccountData(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}
