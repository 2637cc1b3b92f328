package catalog

// Therapeutic classes used by the shipped table
const (
	ClassStimulant           = "Psicoestimulante"
	ClassNonStimulantADHD    = "Tratamento TDAH não estimulante"
	ClassSSRI                = "Antidepressivo ISRS"
	ClassSNRI                = "Antidepressivo IRSN"
	ClassTricyclic           = "Antidepressivo tricíclico"
	ClassAtypicalAD          = "Antidepressivo atípico"
	ClassAtypicalAntipsych   = "Antipsicótico atípico"
	ClassTypicalAntipsych    = "Antipsicótico típico"
	ClassMoodStabilizer      = "Estabilizador de humor"
	ClassAnticonvulsant      = "Anticonvulsivante"
	ClassBenzodiazepine      = "Benzodiazepínico"
	ClassHypnotic            = "Hipnótico"
	ClassAnxiolytic          = "Ansiolítico"
	ClassAntidementia        = "Antidemência"
	ClassOpioidAntagonist    = "Antagonista opioide"
	ClassBetaBlocker         = "Betabloqueador"
	ClassThyroidHormone      = "Hormônio tireoidiano"
	ClassAntihistamine       = "Anti-histamínico"
	ClassProtonPumpInhibitor = "Inibidor da bomba de prótons"
)

var defaultEntries = []Entry{
	// Stimulants and ADHD
	{Key: "metilfenidato", ActiveIngredient: "Metilfenidato", Class: ClassStimulant,
		Variations: []string{"ritalina", "ritalina la", "concerta"}},
	{Key: "lisdexanfetamina", ActiveIngredient: "Lisdexanfetamina", Class: ClassStimulant,
		Variations: []string{"venvanse", "juneve"}},
	{Key: "modafinila", ActiveIngredient: "Modafinila", Class: ClassStimulant,
		Variations: []string{"stavigile", "modafinil"}},
	{Key: "atomoxetina", ActiveIngredient: "Atomoxetina", Class: ClassNonStimulantADHD,
		Variations: []string{"strattera", "atentah"}},

	// SSRIs
	{Key: "escitalopram", ActiveIngredient: "Escitalopram", Class: ClassSSRI,
		Variations: []string{"exodus", "lexapro", "reconter", "escilex", "oxalato de escitalopram"}},
	{Key: "citalopram", ActiveIngredient: "Citalopram", Class: ClassSSRI,
		Variations: []string{"cipramil", "procimax", "denyl"}},
	{Key: "sertralina", ActiveIngredient: "Sertralina", Class: ClassSSRI,
		Variations: []string{"zoloft", "tolrest", "assert", "serenata", "cloridrato de sertralina"}},
	{Key: "fluoxetina", ActiveIngredient: "Fluoxetina", Class: ClassSSRI,
		Variations: []string{"prozac", "daforin", "verotina", "fluxene"}},
	{Key: "paroxetina", ActiveIngredient: "Paroxetina", Class: ClassSSRI,
		Variations: []string{"paxil", "aropax", "pondera"}},
	{Key: "fluvoxamina", ActiveIngredient: "Fluvoxamina", Class: ClassSSRI,
		Variations: []string{"luvox"}},

	// SNRIs
	{Key: "venlafaxina", ActiveIngredient: "Venlafaxina", Class: ClassSNRI,
		Variations: []string{"efexor", "efexor xr", "venlift", "venlift od"}},
	{Key: "desvenlafaxina", ActiveIngredient: "Desvenlafaxina", Class: ClassSNRI,
		Variations: []string{"pristiq"}},
	{Key: "duloxetina", ActiveIngredient: "Duloxetina", Class: ClassSNRI,
		Variations: []string{"velija", "cymbalta"}},

	// Tricyclics
	{Key: "amitriptilina", ActiveIngredient: "Amitriptilina", Class: ClassTricyclic,
		Variations: []string{"tryptanol", "amytril"}},
	{Key: "nortriptilina", ActiveIngredient: "Nortriptilina", Class: ClassTricyclic,
		Variations: []string{"pamelor"}},
	{Key: "clomipramina", ActiveIngredient: "Clomipramina", Class: ClassTricyclic,
		Variations: []string{"anafranil"}},

	// Other antidepressants
	{Key: "trazodona", ActiveIngredient: "Trazodona", Class: ClassAtypicalAD,
		Variations: []string{"donaren", "donaren retard"}},
	{Key: "bupropiona", ActiveIngredient: "Bupropiona", Class: ClassAtypicalAD,
		Variations: []string{"wellbutrin", "wellbutrin xl", "zetron", "bupium"}},
	{Key: "mirtazapina", ActiveIngredient: "Mirtazapina", Class: ClassAtypicalAD,
		Variations: []string{"remeron", "menelat", "razapina"}},
	{Key: "vortioxetina", ActiveIngredient: "Vortioxetina", Class: ClassAtypicalAD,
		Variations: []string{"brintellix"}},
	{Key: "agomelatina", ActiveIngredient: "Agomelatina", Class: ClassAtypicalAD,
		Variations: []string{"valdoxan"}},

	// Antipsychotics
	{Key: "quetiapina", ActiveIngredient: "Quetiapina", Class: ClassAtypicalAntipsych,
		Variations: []string{"seroquel", "seroquel xro", "quetros"}},
	{Key: "olanzapina", ActiveIngredient: "Olanzapina", Class: ClassAtypicalAntipsych,
		Variations: []string{"zyprexa"}},
	{Key: "risperidona", ActiveIngredient: "Risperidona", Class: ClassAtypicalAntipsych,
		Variations: []string{"risperdal"}},
	{Key: "aripiprazol", ActiveIngredient: "Aripiprazol", Class: ClassAtypicalAntipsych,
		Variations: []string{"abilify", "aristab"}},
	{Key: "lurasidona", ActiveIngredient: "Lurasidona", Class: ClassAtypicalAntipsych,
		Variations: []string{"latuda"}},
	{Key: "clozapina", ActiveIngredient: "Clozapina", Class: ClassAtypicalAntipsych,
		Variations: []string{"leponex"}},
	{Key: "haloperidol", ActiveIngredient: "Haloperidol", Class: ClassTypicalAntipsych,
		Variations: []string{"haldol"}},

	// Mood stabilizers and anticonvulsants
	{Key: "litio", ActiveIngredient: "Carbonato de lítio", Class: ClassMoodStabilizer,
		Variations: []string{"carbonato de litio", "carbolitium"}},
	{Key: "acido valproico", ActiveIngredient: "Ácido valproico", Class: ClassMoodStabilizer,
		Variations: []string{"depakene", "depakote", "depakote er", "valproato de sodio", "divalproato de sodio"}},
	{Key: "lamotrigina", ActiveIngredient: "Lamotrigina", Class: ClassAnticonvulsant,
		Variations: []string{"lamictal", "lamitor"}},
	{Key: "carbamazepina", ActiveIngredient: "Carbamazepina", Class: ClassAnticonvulsant,
		Variations: []string{"tegretol"}},
	{Key: "oxcarbazepina", ActiveIngredient: "Oxcarbazepina", Class: ClassAnticonvulsant,
		Variations: []string{"trileptal"}},
	{Key: "topiramato", ActiveIngredient: "Topiramato", Class: ClassAnticonvulsant,
		Variations: []string{"topamax"}},
	{Key: "gabapentina", ActiveIngredient: "Gabapentina", Class: ClassAnticonvulsant,
		Variations: []string{"neurontin"}},
	{Key: "pregabalina", ActiveIngredient: "Pregabalina", Class: ClassAnticonvulsant,
		Variations: []string{"lyrica", "prebictal"}},

	// Benzodiazepines, hypnotics and anxiolytics
	{Key: "clonazepam", ActiveIngredient: "Clonazepam", Class: ClassBenzodiazepine,
		Variations: []string{"rivotril", "clonotril"}},
	{Key: "alprazolam", ActiveIngredient: "Alprazolam", Class: ClassBenzodiazepine,
		Variations: []string{"frontal", "apraz"}},
	{Key: "diazepam", ActiveIngredient: "Diazepam", Class: ClassBenzodiazepine,
		Variations: []string{"valium"}},
	{Key: "lorazepam", ActiveIngredient: "Lorazepam", Class: ClassBenzodiazepine,
		Variations: []string{"lorax"}},
	{Key: "bromazepam", ActiveIngredient: "Bromazepam", Class: ClassBenzodiazepine,
		Variations: []string{"lexotan"}},
	{Key: "zolpidem", ActiveIngredient: "Zolpidem", Class: ClassHypnotic,
		Variations: []string{"stilnox", "patz", "hemitartarato de zolpidem"}},
	{Key: "melatonina", ActiveIngredient: "Melatonina", Class: ClassHypnotic,
		Variations: []string{"melatonin"}},
	{Key: "buspirona", ActiveIngredient: "Buspirona", Class: ClassAnxiolytic,
		Variations: []string{"buspar", "ansitec"}},

	// Dementia and addiction
	{Key: "donepezila", ActiveIngredient: "Donepezila", Class: ClassAntidementia,
		Variations: []string{"eranz"}},
	{Key: "memantina", ActiveIngredient: "Memantina", Class: ClassAntidementia,
		Variations: []string{"ebix", "alois"}},
	{Key: "naltrexona", ActiveIngredient: "Naltrexona", Class: ClassOpioidAntagonist,
		Variations: []string{"revia", "uninaltrex"}},

	// Frequent co-prescriptions
	{Key: "propranolol", ActiveIngredient: "Propranolol", Class: ClassBetaBlocker,
		Variations: []string{"inderal"}},
	{Key: "levotiroxina", ActiveIngredient: "Levotiroxina", Class: ClassThyroidHormone,
		Variations: []string{"puran t4", "synthroid", "euthyrox"}},
	{Key: "hidroxizina", ActiveIngredient: "Hidroxizina", Class: ClassAntihistamine,
		Variations: []string{"hixizine"}},
	{Key: "omeprazol", ActiveIngredient: "Omeprazol", Class: ClassProtonPumpInhibitor,
		Variations: []string{"losec"}},
}
