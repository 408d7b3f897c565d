package validation

import (
	"errors"
	"testing"
)

type signupPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"user_type" validate:"required,role"`
}

func TestStruct_OK(t *testing.T) {
	v := New()
	if err := v.Struct(signupPayload{Email: "a@x.com", Password: "pw123456", Role: "Parent"}); err != nil {
		t.Fatalf("Struct: %v", err)
	}
}

func TestStruct_Errors(t *testing.T) {
	v := New()
	err := v.Struct(signupPayload{Email: "nope", Password: "short", Role: "admin"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %T %v, want *Error", err, err)
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"email":     "email must be a valid email address",
		"password":  "password must be at least 8 characters in length",
		"user_type": "user_type must be student or parent",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: message = %q, want %q", field, got[field], msg)
		}
	}
}

func TestStruct_Required(t *testing.T) {
	v := New()
	err := v.Struct(signupPayload{})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if verr.Fields[0].Message != "this field is required" {
		t.Errorf("message = %q", verr.Fields[0].Message)
	}
	if verr.Error() != verr.Fields[0].Message {
		t.Errorf("Error() = %q", verr.Error())
	}
}
