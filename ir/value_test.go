package ir

import "testing"

func TestValType_String(t *testing.T) {
	tests := []struct {
		t    ValType
		want string
	}{
		{I32, "i32"},
		{I64, "i64"},
		{F32, "f32"},
		{F64, "f64"},
		{V128, "v128"},
		{FuncRef, "funcref"},
		{ExternRef, "externref"},
		{ValType(0), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestValType_IsReference(t *testing.T) {
	for _, t2 := range []ValType{FuncRef, ExternRef} {
		if !t2.IsReference() {
			t.Errorf("%v should be a reference type", t2)
		}
	}
	for _, t2 := range []ValType{I32, I64, F32, F64, V128} {
		if t2.IsReference() {
			t.Errorf("%v should not be a reference type", t2)
		}
	}
}

func TestValType_IsNumeric(t *testing.T) {
	for _, t2 := range []ValType{I32, I64, F32, F64} {
		if !t2.IsNumeric() {
			t.Errorf("%v should be numeric", t2)
		}
	}
	for _, t2 := range []ValType{V128, FuncRef, ExternRef} {
		if t2.IsNumeric() {
			t.Errorf("%v should not be numeric", t2)
		}
	}
}

func TestUnify(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Operand
		want   Operand
		wantOk bool
	}{
		{"both unknown", Unknown, Unknown, Unknown, true},
		{"known and unknown", Known(I32), Unknown, Known(I32), true},
		{"unknown and known", Unknown, Known(I64), Known(I64), true},
		{"same concrete type", Known(F32), Known(F32), Known(F32), true},
		{"different concrete types", Known(I32), Known(I64), Operand{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Unify(tt.a, tt.b)
			if ok != tt.wantOk {
				t.Fatalf("Unify(%v, %v) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("Unify(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
