package validate_test

import (
	"fmt"

	"github.com/patric-chuzhbe/usrlinks/internal/validate"
)

func ExampleURL() {
	fmt.Println(validate.URL("https://example.com/page"))
	fmt.Println(validate.URL("example.com/page"))
	// Output:
	// true
	// false
}

func ExampleUserID() {
	fmt.Println(validate.UserID("17"))
	fmt.Println(validate.UserID("0"))
	fmt.Println(validate.UserID("seventeen"))
	// Output:
	// true
	// false
	// false
}
