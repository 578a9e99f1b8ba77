package failure

import "github.com/abhisek/physiq/internal/question"

// staticQuestion is a hand-checked question served when generation fails.
type staticQuestion struct {
	Text        string
	Options     [question.OptionCount]string
	Answer      question.Letter
	Explanation string
}

// fallbackBank holds known-good questions per topic ID.
var fallbackBank = map[string][]staticQuestion{
	"kinematics": {
		{
			Text:        "A car accelerates uniformly from rest to 20 m s⁻¹ in 5.0 s. What distance does the car travel in this time?",
			Options:     [4]string{"25 m", "50 m", "100 m", "200 m"},
			Answer:      question.LetterB,
			Explanation: "The average speed is 10 m s⁻¹, so the distance is 10 m s⁻¹ × 5.0 s = 50 m.",
		},
		{
			Text:        "A ball is released from rest and falls freely for 3.0 s. Taking g = 9.8 m s⁻², what is its speed at the end of this time?",
			Options:     [4]string{"3.3 m s⁻¹", "9.8 m s⁻¹", "29 m s⁻¹", "44 m s⁻¹"},
			Answer:      question.LetterC,
			Explanation: "v = gt = 9.8 m s⁻² × 3.0 s ≈ 29 m s⁻¹.",
		},
	},
	"forces-momentum": {
		{
			Text:        "A 2.0 kg trolley moving at 3.0 m s⁻¹ collides with and sticks to a stationary 1.0 kg trolley. What is the speed of the trolleys immediately after the collision?",
			Options:     [4]string{"1.0 m s⁻¹", "1.5 m s⁻¹", "2.0 m s⁻¹", "3.0 m s⁻¹"},
			Answer:      question.LetterC,
			Explanation: "Momentum is conserved: 2.0 kg × 3.0 m s⁻¹ = 3.0 kg × v, so v = 2.0 m s⁻¹.",
		},
	},
	"work-energy-power": {
		{
			Text:        "A motor lifts a 50 kg load vertically through 12 m in 20 s at constant speed. Taking g = 9.8 m s⁻², what is the useful output power of the motor?",
			Options:     [4]string{"30 W", "290 W", "590 W", "5900 W"},
			Answer:      question.LetterB,
			Explanation: "The work done is mgh = 50 × 9.8 × 12 ≈ 5900 J, delivered in 20 s, so P ≈ 290 W.",
		},
	},
	"thermal-energy-transfers": {
		{
			Text:        "How much energy is needed to raise the temperature of 2.0 kg of water by 15 K? The specific heat capacity of water is 4200 J kg⁻¹ K⁻¹.",
			Options:     [4]string{"6.3 × 10^3 J", "3.2 × 10^4 J", "1.3 × 10^5 J", "2.5 × 10^5 J"},
			Answer:      question.LetterC,
			Explanation: "Q = mcΔT = 2.0 × 4200 × 15 = 1.26 × 10^5 J.",
		},
	},
	"gas-laws": {
		{
			Text:        "A fixed mass of ideal gas at 300 K is heated at constant volume until its pressure doubles. What is the final temperature of the gas?",
			Options:     [4]string{"150 K", "300 K", "600 K", "900 K"},
			Answer:      question.LetterC,
			Explanation: "At constant volume p is proportional to T, so doubling p doubles T to 600 K.",
		},
	},
	"current-circuits": {
		{
			Text:        "Two 6.0 Ω resistors are connected in parallel across a 12 V battery of negligible internal resistance. What current is drawn from the battery?",
			Options:     [4]string{"1.0 A", "2.0 A", "4.0 A", "8.0 A"},
			Answer:      question.LetterC,
			Explanation: "The combined resistance is 3.0 Ω, so I = 12 V / 3.0 Ω = 4.0 A.",
		},
	},
	"simple-harmonic-motion": {
		{
			Text:        "An object on a spring performs simple harmonic motion with a period of 0.50 s. What is the frequency of the oscillation?",
			Options:     [4]string{"0.50 Hz", "1.0 Hz", "2.0 Hz", "4.0 Hz"},
			Answer:      question.LetterC,
			Explanation: "f = 1/T = 1/0.50 s = 2.0 Hz.",
		},
	},
	"wave-model": {
		{
			Text:        "A wave has a frequency of 250 Hz and a wavelength of 1.2 m. What is the speed of the wave?",
			Options:     [4]string{"208 m s⁻¹", "251 m s⁻¹", "300 m s⁻¹", "360 m s⁻¹"},
			Answer:      question.LetterC,
			Explanation: "v = fλ = 250 Hz × 1.2 m = 300 m s⁻¹.",
		},
	},
	"gravitational-fields": {
		{
			Text:        "Which quantity has the same value at every point on an equipotential surface in a gravitational field?",
			Options:     [4]string{"Gravitational field strength", "Gravitational potential", "Gravitational force on a test mass", "Acceleration of a falling object"},
			Answer:      question.LetterB,
			Explanation: "An equipotential surface is by definition a surface of constant gravitational potential.",
		},
	},
	"electric-magnetic-fields": {
		{
			Text:        "Two point charges of 2.0 μC each are 0.30 m apart in a vacuum. Taking k = 8.99 × 10^9 N m² C⁻², what is the magnitude of the electric force between them?",
			Options:     [4]string{"0.12 N", "0.24 N", "0.40 N", "1.2 N"},
			Answer:      question.LetterC,
			Explanation: "F = kq₁q₂/r² = 8.99 × 10^9 × (2.0 × 10^-6)² / 0.30² ≈ 0.40 N.",
		},
	},
	"radioactive-decay": {
		{
			Text:        "A radioactive sample has a half-life of 8.0 days. What fraction of the original nuclei remains undecayed after 24 days?",
			Options:     [4]string{"1/3", "1/4", "1/8", "1/16"},
			Answer:      question.LetterC,
			Explanation: "24 days is three half-lives, so (1/2)³ = 1/8 remains.",
		},
	},
	"quantum-physics": {
		{
			Text:        "Light of frequency 1.0 × 10^15 Hz falls on a metal surface. Taking h = 6.63 × 10^-34 J s, what is the energy of one photon?",
			Options:     [4]string{"6.6 × 10^-49 J", "6.6 × 10^-19 J", "1.5 × 10^-19 J", "6.6 × 10^-34 J"},
			Answer:      question.LetterB,
			Explanation: "E = hf = 6.63 × 10^-34 J s × 1.0 × 10^15 Hz ≈ 6.6 × 10^-19 J.",
		},
	},
}

// genericFallback is served for topics without bank entries.
var genericFallback = staticQuestion{
	Text:        "Which of the following is an SI base unit?",
	Options:     [4]string{"Newton", "Joule", "Kilogram", "Watt"},
	Answer:      question.LetterC,
	Explanation: "The kilogram is one of the seven SI base units. The newton, joule and watt are derived units.",
}

// HasFallback reports whether topic has hand-authored fallback questions.
func HasFallback(topic string) bool {
	return len(fallbackBank[topic]) > 0
}
