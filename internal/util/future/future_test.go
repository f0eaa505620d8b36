package future

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func value(v int) *Future[int] {
	return New(func() (int, error) { return v, nil })
}

func TestAll(t *testing.T) {
	type testCase struct {
		name    string
		futures []*Future[int]
		wantVal []int
		wantErr bool
	}

	testCases := []testCase{
		{
			name:    "values keep their order",
			futures: []*Future[int]{value(10), value(20), value(30)},
			wantVal: []int{10, 20, 30},
		},
		{
			name: "delayed futures keep their order",
			futures: []*Future[int]{
				New(func() (int, error) {
					time.Sleep(10 * time.Millisecond)
					return 100, nil
				}),
				New(func() (int, error) {
					time.Sleep(1 * time.Millisecond)
					return 200, nil
				}),
			},
			wantVal: []int{100, 200},
		},
		{
			name: "one failure fails the group",
			futures: []*Future[int]{
				value(1),
				New(func() (int, error) { return 0, errors.New("failure") }),
			},
			wantErr: true,
		},
		{
			name: "panic becomes an error",
			futures: []*Future[int]{
				New(func() (int, error) {
					panic("boom")
				}),
			},
			wantErr: true,
		},
		{
			name:    "no futures",
			futures: []*Future[int]{},
			wantVal: []int{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, err := All(tc.futures...).Await()

			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error: %v, got: %v", tc.wantErr, err)
			}
			if tc.wantErr {
				return
			}
			if len(val) != len(tc.wantVal) {
				t.Fatalf("expected %d values, got %d", len(tc.wantVal), len(val))
			}
			for i := range val {
				if val[i] != tc.wantVal[i] {
					t.Fatalf("value %d: expected %d, got %d", i, tc.wantVal[i], val[i])
				}
			}
		})
	}
}

func TestRange(t *testing.T) {
	var calls atomic.Int32
	out, err := Range(8, func(i int) (int, error) {
		calls.Add(1)
		return i * i, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 8 {
		t.Fatalf("expected 8 calls, got %d", calls.Load())
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("index %d: expected %d, got %d", i, i*i, v)
		}
	}
}
