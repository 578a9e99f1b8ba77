package topics

func seedTopics() []Topic {
	return []Topic{
		// Theme A
		{
			ID:       "kinematics",
			Name:     "Kinematics",
			Theme:    ThemeSpaceTimeMotion,
			Context:  "Focus on displacement, velocity, acceleration, equations of motion, and graphical analysis of motion.",
			Keywords: []string{"displacement", "velocity", "speed", "acceleration", "distance", "time", "motion", "projectile", "uniform", "graph", "initial", "final", "falls", "thrown", "rest"},
			Ranges: map[Quantity]Range{
				QuantityVelocity:     {Min: 0, Max: 1e4},
				QuantityAcceleration: {Min: 0, Max: 100},
				QuantityTime:         {Min: 1e-3, Max: 1e5},
				QuantityLength:       {Min: 1e-3, Max: 1e7},
			},
		},
		{
			ID:       "forces-momentum",
			Name:     "Forces and Momentum",
			Theme:    ThemeSpaceTimeMotion,
			Context:  "Include Newton's laws, force analysis, momentum conservation, impulse, and collision problems.",
			Keywords: []string{"force", "momentum", "impulse", "collision", "newton", "mass", "friction", "tension", "weight", "normal", "elastic", "inelastic", "resultant", "equilibrium"},
			Ranges: map[Quantity]Range{
				QuantityForce:    {Min: 1e-3, Max: 1e7},
				QuantityMass:     {Min: 1e-3, Max: 1e6},
				QuantityVelocity: {Min: 0, Max: 1e4},
			},
		},
		{
			ID:       "work-energy-power",
			Name:     "Work, Energy and Power",
			Theme:    ThemeSpaceTimeMotion,
			Context:  "Cover work done by forces, kinetic and potential energy, conservation of energy, and power calculations.",
			Keywords: []string{"work", "energy", "power", "kinetic", "potential", "gravitational", "efficiency", "conservation", "joule", "watt", "lifted", "height", "done"},
			Ranges: map[Quantity]Range{
				QuantityEnergy: {Min: 1e-3, Max: 1e12},
				QuantityPower:  {Min: 1e-3, Max: 1e10},
			},
		},
		{
			ID:              "rigid-body-mechanics",
			Name:            "Rigid Body Mechanics (HL)",
			Theme:           ThemeSpaceTimeMotion,
			Context:         "Advanced mechanics including rotational motion, torque, angular momentum, and moment of inertia.",
			Keywords:        []string{"torque", "angular", "rotational", "inertia", "moment", "rotation", "axis", "rigid", "radius", "wheel", "disc"},
			HigherLevelOnly: true,
		},
		{
			ID:              "galilean-special-relativity",
			Name:            "Galilean and Special Relativity (HL)",
			Theme:           ThemeSpaceTimeMotion,
			Context:         "Galilean transformations, special relativity principles, time dilation, and length contraction.",
			Keywords:        []string{"relativity", "frame", "observer", "dilation", "contraction", "lorentz", "proper", "spacetime", "galilean", "light", "simultaneity"},
			HigherLevelOnly: true,
		},

		// Theme B
		{
			ID:       "thermal-energy-transfers",
			Name:     "Thermal Energy Transfers",
			Theme:    ThemeParticulate,
			Context:  "Heat transfer mechanisms, thermal conductivity, specific heat capacity, and phase changes.",
			Keywords: []string{"heat", "thermal", "temperature", "specific", "capacity", "latent", "conduction", "convection", "radiation", "melting", "boiling", "water", "ice"},
			Ranges: map[Quantity]Range{
				QuantityTemperature: {Min: 1, Max: 1e4},
				QuantityEnergy:      {Min: 1e-3, Max: 1e10},
			},
		},
		{
			ID:       "greenhouse-effect",
			Name:     "Greenhouse Effect",
			Theme:    ThemeParticulate,
			Context:  "Radiation balance, greenhouse gases, albedo, and climate change physics.",
			Keywords: []string{"greenhouse", "albedo", "emissivity", "radiation", "intensity", "earth", "atmosphere", "infrared", "solar", "climate", "black-body"},
		},
		{
			ID:       "gas-laws",
			Name:     "Gas Laws",
			Theme:    ThemeParticulate,
			Context:  "Ideal gas law, kinetic theory, pressure-volume relationships, and gas behavior.",
			Keywords: []string{"gas", "pressure", "volume", "temperature", "ideal", "moles", "kinetic", "molecules", "boyle", "container", "kelvin"},
			Ranges: map[Quantity]Range{
				QuantityPressure:    {Min: 1, Max: 1e8},
				QuantityTemperature: {Min: 1, Max: 5e3},
			},
		},
		{
			ID:       "current-circuits",
			Name:     "Current and Circuits",
			Theme:    ThemeParticulate,
			Context:  "Electric current, resistance, Ohm's law, circuit analysis, and electrical power.",
			Keywords: []string{"current", "resistance", "voltage", "circuit", "resistor", "ohm", "series", "parallel", "potential", "difference", "emf", "battery", "power"},
			Ranges: map[Quantity]Range{
				QuantityCurrent:    {Min: 1e-6, Max: 100},
				QuantityVoltage:    {Min: 1e-3, Max: 1e4},
				QuantityResistance: {Min: 1e-3, Max: 1e8},
			},
		},
		{
			ID:              "thermodynamics",
			Name:            "Thermodynamics (HL)",
			Theme:           ThemeParticulate,
			Context:         "Laws of thermodynamics, heat engines, entropy, and thermodynamic cycles.",
			Keywords:        []string{"entropy", "thermodynamics", "engine", "cycle", "adiabatic", "isothermal", "isobaric", "internal", "efficiency", "carnot", "heat"},
			HigherLevelOnly: true,
		},

		// Theme C
		{
			ID:       "simple-harmonic-motion",
			Name:     "Simple Harmonic Motion",
			Theme:    ThemeWaves,
			Context:  "Oscillatory motion, period, frequency, amplitude, and energy in SHM.",
			Keywords: []string{"oscillation", "period", "frequency", "amplitude", "pendulum", "spring", "harmonic", "displacement", "equilibrium", "phase"},
			Ranges: map[Quantity]Range{
				QuantityFrequency: {Min: 1e-3, Max: 1e6},
				QuantityTime:      {Min: 1e-6, Max: 1e4},
			},
		},
		{
			ID:       "wave-model",
			Name:     "Wave Model",
			Theme:    ThemeWaves,
			Context:  "Wave properties, wave equation, wavelength, frequency, and wave speed.",
			Keywords: []string{"wave", "wavelength", "frequency", "speed", "amplitude", "transverse", "longitudinal", "crest", "period", "medium"},
		},
		{
			ID:       "wave-phenomena",
			Name:     "Wave Phenomena",
			Theme:    ThemeWaves,
			Context:  "Reflection, refraction, diffraction, interference, and polarization of waves.",
			Keywords: []string{"reflection", "refraction", "diffraction", "interference", "polarization", "slit", "fringe", "index", "snell", "critical", "angle"},
		},
		{
			ID:       "standing-waves-resonance",
			Name:     "Standing Waves and Resonance",
			Theme:    ThemeWaves,
			Context:  "Stationary waves, nodes, antinodes, resonance, and wave superposition.",
			Keywords: []string{"standing", "stationary", "node", "antinode", "resonance", "harmonic", "string", "pipe", "superposition", "fundamental"},
		},
		{
			ID:       "doppler-effect",
			Name:     "Doppler Effect",
			Theme:    ThemeWaves,
			Context:  "Frequency shifts due to relative motion between source and observer.",
			Keywords: []string{"doppler", "source", "observer", "frequency", "shift", "approaching", "receding", "sound", "redshift", "moving"},
		},

		// Theme D
		{
			ID:       "gravitational-fields",
			Name:     "Gravitational Fields",
			Theme:    ThemeFields,
			Context:  "Gravitational field strength, potential, orbital motion, and Kepler's laws.",
			Keywords: []string{"gravitational", "field", "orbit", "satellite", "planet", "potential", "kepler", "escape", "mass", "radius", "strength"},
		},
		{
			ID:       "electric-magnetic-fields",
			Name:     "Electric and Magnetic Fields",
			Theme:    ThemeFields,
			Context:  "Electric field strength, potential, magnetic field effects, and field interactions.",
			Keywords: []string{"electric", "magnetic", "field", "charge", "coulomb", "potential", "flux", "wire", "plates", "strength", "tesla"},
		},
		{
			ID:       "motion-electromagnetic-fields",
			Name:     "Motion in Electromagnetic Fields",
			Theme:    ThemeFields,
			Context:  "Charged particle motion in electric and magnetic fields, and electromagnetic forces.",
			Keywords: []string{"charged", "particle", "electron", "proton", "magnetic", "electric", "field", "circular", "path", "radius", "force"},
		},
		{
			ID:              "induction",
			Name:            "Induction (HL)",
			Theme:           ThemeFields,
			Context:         "Electromagnetic induction, Faraday's law, Lenz's law, and induced EMF.",
			Keywords:        []string{"induction", "induced", "emf", "faraday", "lenz", "flux", "coil", "magnetic", "generator", "transformer", "linkage"},
			HigherLevelOnly: true,
		},

		// Theme E
		{
			ID:       "structure-atom",
			Name:     "Structure of the Atom",
			Theme:    ThemeNuclearQuantum,
			Context:  "Atomic models, electron energy levels, emission and absorption spectra.",
			Keywords: []string{"atom", "electron", "nucleus", "energy", "level", "spectrum", "emission", "absorption", "photon", "rutherford", "bohr"},
		},
		{
			ID:       "radioactive-decay",
			Name:     "Radioactive Decay",
			Theme:    ThemeNuclearQuantum,
			Context:  "Radioactive decay processes, half-life, decay constants, and nuclear stability.",
			Keywords: []string{"radioactive", "decay", "half-life", "activity", "alpha", "beta", "gamma", "nuclide", "isotope", "constant", "sample", "nuclei"},
		},
		{
			ID:       "fission",
			Name:     "Fission",
			Theme:    ThemeNuclearQuantum,
			Context:  "Nuclear fission process, chain reactions, and fission energy calculations.",
			Keywords: []string{"fission", "chain", "reaction", "neutron", "uranium", "reactor", "moderator", "energy", "nucleus", "critical"},
		},
		{
			ID:       "fusion-stars",
			Name:     "Fusion and Stars",
			Theme:    ThemeNuclearQuantum,
			Context:  "Nuclear fusion, stellar nucleosynthesis, and energy production in stars.",
			Keywords: []string{"fusion", "star", "hydrogen", "helium", "stellar", "luminosity", "main", "sequence", "nucleosynthesis", "sun"},
		},
		{
			ID:              "quantum-physics",
			Name:            "Quantum Physics (HL)",
			Theme:           ThemeNuclearQuantum,
			Context:         "Quantum mechanics principles, wave-particle duality, and quantum phenomena.",
			Keywords:        []string{"quantum", "photon", "photoelectric", "wavelength", "broglie", "duality", "planck", "work", "function", "threshold", "uncertainty"},
			HigherLevelOnly: true,
		},

		// Options
		{
			ID:       "relativity",
			Name:     "Relativity (Option A)",
			Theme:    ThemeOptions,
			Context:  "Special and general relativity, spacetime, relativistic effects, and cosmological applications.",
			Keywords: []string{"relativity", "spacetime", "dilation", "contraction", "frame", "observer", "lorentz", "gravitational", "light", "event"},
		},
		{
			ID:       "engineering-physics",
			Name:     "Engineering Physics (Option B)",
			Theme:    ThemeOptions,
			Context:  "Applied physics in engineering contexts, materials science, and technological applications.",
			Keywords: []string{"torque", "rotational", "fluid", "buoyancy", "bernoulli", "damping", "stress", "strain", "engine", "pressure"},
		},
		{
			ID:       "imaging",
			Name:     "Imaging (Option C)",
			Theme:    ThemeOptions,
			Context:  "Medical and scientific imaging techniques, optics, and image formation principles.",
			Keywords: []string{"lens", "focal", "image", "magnification", "telescope", "microscope", "ultrasound", "x-ray", "optical", "fibre"},
		},
		{
			ID:       "astrophysics",
			Name:     "Astrophysics (Option D)",
			Theme:    ThemeOptions,
			Context:  "Stellar physics, cosmology, galactic structures, and astronomical phenomena.",
			Keywords: []string{"star", "galaxy", "luminosity", "parallax", "hubble", "redshift", "cosmology", "universe", "parsec", "light-year"},
		},
		{
			ID:       "particle-physics",
			Name:     "Particle Physics (Option E)",
			Theme:    ThemeOptions,
			Context:  "Fundamental particles, particle interactions, accelerators, and the Standard Model.",
			Keywords: []string{"quark", "lepton", "hadron", "baryon", "meson", "boson", "particle", "standard", "model", "antiparticle", "interaction"},
		},
	}
}
