package rbac

import "encoding/json"

type wire struct {
	Admin bool     `json:"admin"`
	Perms []string `json:"perms,omitempty"`
}

// MarshalJSON 缓存用
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	if p.admin {
		return json.Marshal(wire{Admin: true})
	}
	return json.Marshal(wire{Perms: p.Strings()})
}

func (p *PermissionSet) UnmarshalJSON(b []byte) error {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Admin {
		*p = Admin()
		return nil
	}
	*p = Scoped(w.Perms...)
	return nil
}
