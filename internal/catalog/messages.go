package catalog

// defaultMessages uygulamadaki onaylı mesaj seti
func defaultMessages() Messages {
	return Messages{
		ThankYou: []string{
			"Thank you for your outstanding service!",
			"Your expertise made my day. Thank you!",
			"Fantastic work, thank you for going above and beyond!",
			"Grateful for your help and professionalism!",
			"You fixed it like a pro. Thanks a ton!",
			"Appreciate your quick and reliable service!",
		},
		Token: []string{
			"Sending some TOA tokens your way. Great job!",
			"A little extra appreciation for your amazing work!",
			"You earned these. Thanks for the excellent service!",
			"TOA tokens for a true professional!",
			"Your hard work deserves a reward. Enjoy!",
		},
	}
}
