package identity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// googleExtractor reads Google's flat OpenID Connect userinfo shape.
type googleExtractor struct{}

func (googleExtractor) extract(attrs map[string]any) Identity {
	return Identity{
		ProviderID: stringAttr(attrs, "sub"),
		Email:      stringAttr(attrs, "email"),
		Name:       stringAttr(attrs, "name"),
		ImageURL:   stringAttr(attrs, "picture"),
	}
}

// kakaoExtractor reads Kakao's shape: a numeric top-level id, email
// nested under kakao_account, display fields nested under properties.
type kakaoExtractor struct{}

func (kakaoExtractor) extract(attrs map[string]any) Identity {
	account := mapAttr(attrs, "kakao_account")
	props := mapAttr(attrs, "properties")

	return Identity{
		ProviderID: stringAttr(attrs, "id"),
		Email:      stringAttr(account, "email"),
		Name:       stringAttr(props, "nickname"),
		ImageURL:   stringAttr(props, "profile_image"),
	}
}

// naverExtractor reads Naver's shape: everything nested under response.
type naverExtractor struct{}

func (naverExtractor) extract(attrs map[string]any) Identity {
	resp := mapAttr(attrs, "response")

	return Identity{
		ProviderID: stringAttr(resp, "id"),
		Email:      stringAttr(resp, "email"),
		Name:       stringAttr(resp, "name"),
		ImageURL:   stringAttr(resp, "profile_image"),
	}
}

func mapAttr(attrs map[string]any, key string) map[string]any {
	if attrs == nil {
		return nil
	}
	m, _ := attrs[key].(map[string]any)
	return m
}

// stringAttr stringifies an attribute value. Kakao returns its id as a
// JSON number, so numeric values are rendered without an exponent.
func stringAttr(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	switch v := attrs[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
